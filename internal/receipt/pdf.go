package receipt

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-pdf/fpdf"
)

// PDF writes an A4 receipt.
func PDF(w io.Writer, b Bill) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(FileName(b.BillNumber, FormatPDF), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, b.Header.Name, "", 1, "C", false, 0, "")
	if b.Header.Tagline != "" {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 8, b.Header.Tagline, "", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	for _, line := range []string{
		"Bill Number: " + b.BillNumber,
		"Date: " + b.Date.Format(dateLayout),
		"Customer: " + b.CustomerName,
		"Phone: " + b.CustomerPhone,
	} {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	widths := []float64{100, 20, 30, 30}
	for i, h := range []string{"ITEM", "QTY", "PRICE", "TOTAL"} {
		ln := 0
		if i == len(widths)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, h, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 9)
	for _, l := range b.Lines {
		pdf.CellFormat(widths[0], 6, truncate(l.Name, 35), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.Itoa(l.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, b.money(l.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, b.money(l.Total), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 10)
	summary := []struct {
		label string
		value string
	}{
		{"Subtotal:", b.money(b.Totals.Subtotal)},
		{"Tax (18%):", b.money(b.Totals.TaxAmount)},
		{"Service Charge (5%):", b.money(b.Totals.ServiceCharge)},
	}
	for _, row := range summary {
		pdf.CellFormat(150, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, row.value, "", 1, "R", false, 0, "")
	}

	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, b.money(b.Totals.Total), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Thank you for visiting!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Come again soon!", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "render pdf receipt")
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return fmt.Sprintf("%s...", string(r[:n-3]))
}
