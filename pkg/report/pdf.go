package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cost"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
)

// Document titles.
const (
	TechnicalTitle = "FireAI Technical Report"
	FinancialTitle = "FireAI Financial Report"
)

// Page geometry in millimeters (A4 portrait with 15mm margins).
const (
	pageMargin   = 15.0
	contentWidth = 180.0
	rowHeight    = 8.0
)

// Option configures document output.
type Option func(*options)

type options struct {
	compress bool
	created  time.Time
}

// WithCompression toggles stream compression. Enabled by default.
func WithCompression(on bool) Option {
	return func(o *options) { o.compress = on }
}

// WithCreationDate pins the document creation date, making output
// byte-for-byte reproducible.
func WithCreationDate(t time.Time) Option {
	return func(o *options) { o.created = t }
}

type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string, opts []Option) *document {
	o := options{compress: true}
	for _, opt := range opts {
		opt(&o)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCompression(o.compress)
	pdf.SetCatalogSort(true)
	if !o.created.IsZero() {
		pdf.SetCreationDate(o.created)
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("fireai", true)
	pdf.AddPage()

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWidth, 12, d.tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	return d
}

func (d *document) heading(text string) {
	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.CellFormat(contentWidth, 10, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) line(text string) {
	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.CellFormat(contentWidth, 7, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) table(widths []float64, header []string, rows [][]string) {
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.SetFillColor(240, 240, 240)
	for i, h := range header {
		d.pdf.CellFormat(widths[i], rowHeight, d.tr(h), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			d.pdf.CellFormat(widths[i], rowHeight, d.tr(cell), "1", 0, align, false, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

func (d *document) write(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ComposeTechnical writes the technical report for l: a rooms table with
// per-room area and the sprinkler positions in input order.
func ComposeTechnical(l layout.Layout, w io.Writer, opts ...Option) error {
	d := newDocument(TechnicalTitle, opts)

	d.heading("Layout Summary")
	d.line(fmt.Sprintf("Rooms: %d (layer %s)", len(l.Rooms), layout.LayerRooms))
	d.line(fmt.Sprintf("Sprinklers: %d (layer %s)", len(l.Sprinklers), layout.LayerSprinklers))
	d.pdf.Ln(4)

	d.heading("Rooms")
	rows := make([][]string, 0, len(l.Rooms))
	for _, r := range l.Rooms {
		rows = append(rows, []string{r.Name, mm(r.Width), mm(r.Height), area(r.AreaM2())})
	}
	d.table([]float64{72, 36, 36, 36}, []string{"Room", "Width (mm)", "Height (mm)", "Area (m²)"}, rows)
	d.pdf.Ln(4)

	d.heading("Sprinkler Positions")
	if len(l.Sprinklers) == 0 {
		d.line("None")
	}
	for i, p := range l.Sprinklers {
		d.line(fmt.Sprintf("%d. (%s, %s)", i+1, mm(p.X), mm(p.Y)))
	}

	return d.write(w)
}

// ComposeFinancial writes the financial report: totals, unit prices and
// the estimated cost, each labeled with the summary's currency.
func ComposeFinancial(l layout.Layout, s cost.Summary, w io.Writer, opts ...Option) error {
	d := newDocument(FinancialTitle, opts)

	d.heading("Cost Summary")
	d.table([]float64{110, 70}, []string{"Item", "Value"}, [][]string{
		{"Total area", area(s.TotalAreaM2) + " m²"},
		{"Total sprinklers", strconv.Itoa(s.TotalSprinklers)},
		{"Sprinkler unit cost", money(s.SprinklerUnitCost, s.Currency)},
		{"Area unit cost (per m²)", money(s.AreaUnitCost, s.Currency)},
		{"Estimated cost", money(s.EstimatedCost, s.Currency)},
	})
	d.pdf.Ln(4)

	d.heading("Area by Room")
	p := s.Pricing()
	rows := make([][]string, 0, len(l.Rooms))
	for _, r := range l.Rooms {
		rows = append(rows, []string{r.Name, area(r.AreaM2()), money(p.RoomCost(r), s.Currency)})
	}
	d.table([]float64{80, 50, 50}, []string{"Room", "Area (m²)", "Area cost"}, rows)

	return d.write(w)
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func area(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func money(v float64, currency string) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + " " + currency
}
