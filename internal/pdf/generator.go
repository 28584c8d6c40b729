package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/contracts-billing/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a payment receipt for a paid job.
func (g *Generator) Generate(receipt model.PaymentReceipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "Payment receipt", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Job #%d under contract #%d", receipt.Job.ID, receipt.Contract.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Paid on %s", formatDate(receipt.Job.PaymentDate)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	addPartyBlock(pdf, g.fontName, "Client", receipt.Client)
	pdf.Ln(2)
	addPartyBlock(pdf, g.fontName, "Contractor", receipt.Contractor)
	pdf.Ln(6)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Work", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.MultiCell(0, 6, receipt.Job.Description, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Amount: %s", receipt.Job.Price.StringFixed(2)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addPartyBlock(pdf *gofpdf.Fpdf, font, label string, profile model.Profile) {
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(0, 8, label, "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
	pdf.CellFormat(0, 6, profile.FullName(), "", 1, "L", false, 0, "")
	if profile.Profession != "" {
		pdf.CellFormat(0, 6, profile.Profession, "", 1, "L", false, 0, "")
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02.01.2006")
}
