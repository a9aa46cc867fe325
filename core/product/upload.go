package product

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrBadImageType marks an upload whose content is not one of the
// accepted image formats.
var ErrBadImageType = errors.New("attached file is not an image")

// allowedImageTypes are the only MIME types accepted for product
// images. The type is sniffed from content, not taken from the upload
// headers.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// CheckImageType sniffs the leading bytes of an upload and reports
// whether it is an acceptable image.
func CheckImageType(head []byte) (string, bool) {
	ct := http.DetectContentType(head)
	return ct, allowedImageTypes[ct]
}

// SaveImage validates and stores an uploaded image under dir, returning
// the stored path. A disallowed type fails the whole form submission.
func SaveImage(dir string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening uploaded file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading uploaded file: %w", err)
	}

	ct, ok := CheckImageType(head[:n])
	if !ok {
		return "", fmt.Errorf("%w: got %s", ErrBadImageType, ct)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding uploaded file: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fh.Filename))
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing image file: %w", err)
	}

	return path, nil
}
