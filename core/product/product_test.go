package product

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		size  int
		total int
		want  Meta
	}{
		{
			name: "first of three", page: 1, size: 4, total: 10,
			want: Meta{CurrentPage: 1, HasNextPage: true, HasPreviousPage: false, NextPage: 2, PreviousPage: 0, LastPage: 3, TotalItems: 10},
		},
		{
			name: "last of three", page: 3, size: 4, total: 10,
			want: Meta{CurrentPage: 3, HasNextPage: false, HasPreviousPage: true, NextPage: 4, PreviousPage: 2, LastPage: 3, TotalItems: 10},
		},
		{
			name: "non-positive page defaults to first", page: 0, size: 4, total: 10,
			want: Meta{CurrentPage: 1, HasNextPage: true, HasPreviousPage: false, NextPage: 2, PreviousPage: 0, LastPage: 3, TotalItems: 10},
		},
		{
			name: "past the end", page: 9, size: 4, total: 10,
			want: Meta{CurrentPage: 9, HasNextPage: false, HasPreviousPage: true, NextPage: 10, PreviousPage: 8, LastPage: 3, TotalItems: 10},
		},
		{
			name: "exact fit", page: 2, size: 5, total: 10,
			want: Meta{CurrentPage: 2, HasNextPage: false, HasPreviousPage: true, NextPage: 3, PreviousPage: 1, LastPage: 2, TotalItems: 10},
		},
		{
			name: "empty catalog", page: 1, size: 4, total: 0,
			want: Meta{CurrentPage: 1, HasNextPage: false, HasPreviousPage: false, NextPage: 2, PreviousPage: 0, LastPage: 0, TotalItems: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(tt.page, tt.size, tt.total)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected meta:\n%s", diff)
			}
		})
	}
}

func TestCheckImageType(t *testing.T) {
	png := append([]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 16)...)
	if ct, ok := CheckImageType(png); !ok {
		t.Fatalf("png header rejected as %s", ct)
	}

	jpeg := append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 16)...)
	if ct, ok := CheckImageType(jpeg); !ok {
		t.Fatalf("jpeg header rejected as %s", ct)
	}

	if ct, ok := CheckImageType([]byte("%PDF-1.4 not an image")); ok {
		t.Fatalf("pdf accepted as %s", ct)
	}

	if ct, ok := CheckImageType([]byte("<html><body>hi</body></html>")); ok {
		t.Fatalf("html accepted as %s", ct)
	}
}

func TestParsePrice(t *testing.T) {
	if _, err := parsePrice("10.00"); err != nil {
		t.Fatalf("valid price rejected: %v", err)
	}

	if _, err := parsePrice("0"); err == nil {
		t.Fatal("zero price accepted")
	}

	if _, err := parsePrice("-3.50"); err == nil {
		t.Fatal("negative price accepted")
	}

	if _, err := parsePrice("ten dollars"); err == nil {
		t.Fatal("non-numeric price accepted")
	}
}
