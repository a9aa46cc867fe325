package order

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/velora/goshop/core/claims"
)

// InvoiceName derives the stored file name from the order identifier.
func InvoiceName(orderID string) string {
	return "invoice-" + orderID + ".pdf"
}

// AuthorizeInvoice enforces that only the buyer may read an order's
// invoice.
func AuthorizeInvoice(ord Order, clm claims.Claims) error {
	if ord.UserID != clm.UserID {
		return fmt.Errorf("user[%s] is not the buyer of order[%s]", clm.UserID, ord.ID)
	}
	return nil
}

// RenderInvoice produces the invoice PDF for an order. The layout is a
// pure function of the order: line items as "title - quantity x price"
// followed by the total of the stored snapshot prices. The creation
// date is pinned to the order's so the same order always renders the
// same bytes.
func RenderInvoice(ord Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(ord.CreatedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "U", 26)
	pdf.Cell(0, 14, "Invoice")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 15)
	pdf.Cell(0, 9, "-------------------------------------")
	pdf.Ln(9)

	for _, it := range ord.Items {
		line := fmt.Sprintf("%s - %d x %s", it.Title, it.Quantity, it.Price.StringFixed(2))
		pdf.Cell(0, 9, line)
		pdf.Ln(9)
	}

	pdf.SetFont("Helvetica", "", 20)
	pdf.Cell(0, 11, "---")
	pdf.Ln(11)

	total := InvoiceTotal(ord)
	pdf.Cell(0, 11, "Total: $"+total)
	pdf.Ln(11)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice pdf: %w", err)
	}

	return buf.Bytes(), nil
}

// InvoiceTotal recomputes the total from the frozen line items, so a
// re-rendered invoice never reflects later catalog price changes.
func InvoiceTotal(ord Order) string {
	total := decimal.Zero
	for _, it := range ord.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2).StringFixed(2)
}

// PersistInvoice writes the rendered bytes under dir with the
// order-derived name. The file handle is closed on every path.
func PersistInvoice(dir string, ord Order, pdf []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating invoice dir: %w", err)
	}

	path := filepath.Join(dir, InvoiceName(ord.ID))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating invoice file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(pdf); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing invoice file: %w", err)
	}

	return path, nil
}
