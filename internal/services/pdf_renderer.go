package services

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"reportdesk/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer is the PDF generation capability injected into the
// ExportService. Deployments without PDF support pass nil and every other
// export keeps working.
type PDFRenderer interface {
	RenderDetail(report *models.Report) ([]byte, error)
	RenderList(reports []models.Report, generatedAt time.Time) ([]byte, error)
}

// GofpdfRenderer renders reports with github.com/jung-kurt/gofpdf.
type GofpdfRenderer struct{}

// NewGofpdfRenderer returns the production PDF renderer.
func NewGofpdfRenderer() *GofpdfRenderer {
	return &GofpdfRenderer{}
}

// listColumns are the table columns of the list rendering. Widths in mm; the
// A4 printable width with default margins is 190mm, which the widths fill
// exactly.
var listColumns = []struct {
	header string
	width  float64
}{
	{"ID", 12},
	{"Date", 24},
	{"Title", 72},
	{"Category", 34},
	{"Priority", 22},
	{"Status", 26},
}

const (
	listTitleLimit    = 60
	listCategoryLimit = 18
)

// RenderDetail renders one report as an A4 portrait page with a labeled field
// block and optional description and attachment sections.
func (r *GofpdfRenderer) RenderDetail(report *models.Report) ([]byte, error) {
	pdf := newDocument()
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 10, report.Title, "", "L", false)
	pdf.Ln(4)

	labeledRow(pdf, "ID", strconv.FormatInt(report.ID, 10))
	labeledRow(pdf, "Created", report.CreatedAt.Format(models.TimestampLayout))
	labeledRow(pdf, "Category", string(report.Category))
	labeledRow(pdf, "Priority", string(report.Priority))
	labeledRow(pdf, "Status", string(report.Status))
	if report.ReporterName.Valid {
		labeledRow(pdf, "Reporter", report.ReporterName.String)
	}
	if report.ReporterEmail.Valid {
		labeledRow(pdf, "Email", report.ReporterEmail.String)
	}

	if report.Description.Valid && report.Description.String != "" {
		sectionHeading(pdf, "Description")
		pdf.MultiCell(0, 6, report.Description.String, "", "L", false)
	}

	if report.AttachmentPath.Valid && report.AttachmentPath.String != "" {
		sectionHeading(pdf, "Attachment")
		pdf.MultiCell(0, 6, report.AttachmentPath.String, "", "L", false)
	}

	return render(pdf)
}

// RenderList renders rows as a bordered fixed-width table with a generation
// timestamp above it. Long titles and categories are truncated for column fit.
func (r *GofpdfRenderer) RenderList(reports []models.Report, generatedAt time.Time) ([]byte, error) {
	pdf := newDocument()
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Reports")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("Generated at %s", generatedAt.Format(models.TimestampLayout)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	for _, column := range listColumns {
		pdf.CellFormat(column.width, 7, column.header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, report := range reports {
		cells := []string{
			strconv.FormatInt(report.ID, 10),
			report.CreatedAt.Format("2006-01-02"),
			truncateRunes(report.Title, listTitleLimit),
			truncateRunes(string(report.Category), listCategoryLimit),
			string(report.Priority),
			string(report.Status),
		}
		for i, column := range listColumns {
			pdf.CellFormat(column.width, 7, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return render(pdf)
}

// newDocument builds an A4 portrait document with a page number footer.
func newDocument() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	return pdf
}

func labeledRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(35, 7, label)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 7, value, "", "L", false)
}

func sectionHeading(pdf *gofpdf.Fpdf, heading string) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, heading)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
}

func render(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncateRunes shortens s to at most n runes for fixed table columns.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
