package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFGenerator renders the planning report PDF
type PDFGenerator struct {
	pdf       *gofpdf.Fpdf
	options   PDFOptions
	translate func(string) string
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string
	DateFormat     string
	FontFamily     string
	FontSize       float64
	SectionSize    float64
	TitleFontSize  float64
	LineHeight     float64
	IncludePageNum bool
	AccentColor    PDFColor
	Margins        PDFMargins
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int
	G int
	B int
}

// PDFMargins represents page margins in mm
type PDFMargins struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		DateFormat:     "January 2, 2006",
		FontFamily:     "Helvetica",
		FontSize:       11,
		SectionSize:    14,
		TitleFontSize:  20,
		LineHeight:     7,
		IncludePageNum: true,
		AccentColor:    PDFColor{R: 46, G: 125, B: 50},
		Margins: PDFMargins{
			Left:   20,
			Right:  20,
			Top:    20,
			Bottom: 27,
		},
	}
}

// MetricLine is one "name: value" line of the metrics section.
type MetricLine struct {
	Name  string
	Value string
}

// RecommendationEntry is one numbered recommendation.
type RecommendationEntry struct {
	Title          string
	Severity       string
	Description    string
	Recommendation string
}

// PlanningReport is the content of a rendered report.
type PlanningReport struct {
	Title           string
	GeneratedAt     time.Time
	Metrics         []MetricLine
	Recommendations []RecommendationEntry
}

// NewPDFGenerator creates a new PDF generator
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	pdf := gofpdf.New("P", "mm", options.PageSize, "")
	pdf.SetMargins(options.Margins.Left, options.Margins.Top, options.Margins.Right)
	pdf.SetAutoPageBreak(true, options.Margins.Bottom)

	g := &PDFGenerator{
		pdf:       pdf,
		options:   options,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	g.setFooter()
	return g
}

// Render lays out report and returns the PDF bytes.
func (g *PDFGenerator) Render(report PlanningReport) ([]byte, error) {
	g.pdf.SetTitle(report.Title, true)
	g.pdf.SetCreator("Smart Urban Planner", true)
	g.pdf.AddPage()

	g.addTitle(report.Title)
	g.addDate(report.GeneratedAt)

	if len(report.Metrics) > 0 {
		g.addSectionHeading("Environmental Metrics")
		g.addMetrics(report.Metrics)
	}
	if len(report.Recommendations) > 0 {
		g.addSectionHeading("AI Recommendations")
		g.addRecommendations(report.Recommendations)
	}

	var buf bytes.Buffer
	if err := g.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *PDFGenerator) addTitle(title string) {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.TitleFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 12, g.translate(title), "", 1, "L", false, 0, "")
}

func (g *PDFGenerator) addDate(at time.Time) {
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
	g.pdf.SetTextColor(110, 110, 110)
	g.pdf.CellFormat(0, 6, "Generated: "+at.Format(g.options.DateFormat), "", 1, "L", false, 0, "")
	g.pdf.Ln(6)
}

func (g *PDFGenerator) addSectionHeading(heading string) {
	g.ensureSpace(20)
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.SectionSize)
	g.pdf.SetTextColor(g.options.AccentColor.R, g.options.AccentColor.G, g.options.AccentColor.B)
	g.pdf.CellFormat(0, 10, heading, "", 1, "L", false, 0, "")

	left, _, right, _ := g.pdf.GetMargins()
	pageWidth, _ := g.pdf.GetPageSize()
	y := g.pdf.GetY()
	g.pdf.SetDrawColor(g.options.AccentColor.R, g.options.AccentColor.G, g.options.AccentColor.B)
	g.pdf.Line(left, y, pageWidth-right, y)
	g.pdf.Ln(3)
}

func (g *PDFGenerator) addMetrics(lines []MetricLine) {
	g.pdf.SetTextColor(0, 0, 0)
	for _, line := range lines {
		g.ensureSpace(g.options.LineHeight)
		g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
		label := g.translate(line.Name + ": ")
		g.pdf.CellFormat(g.pdf.GetStringWidth(label)+1, g.options.LineHeight, label, "", 0, "L", false, 0, "")
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
		g.pdf.CellFormat(0, g.options.LineHeight, g.translate(line.Value), "", 1, "L", false, 0, "")
	}
	g.pdf.Ln(6)
}

func (g *PDFGenerator) addRecommendations(entries []RecommendationEntry) {
	for i, entry := range entries {
		g.ensureSpace(3 * g.options.LineHeight)

		heading := fmt.Sprintf("%d. %s", i+1, entry.Title)
		if entry.Severity != "" {
			heading += fmt.Sprintf(" (%s)", entry.Severity)
		}
		g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
		g.pdf.SetTextColor(0, 0, 0)
		g.pdf.MultiCell(0, g.options.LineHeight, g.translate(heading), "", "L", false)

		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
		if entry.Description != "" {
			g.pdf.SetTextColor(90, 90, 90)
			g.pdf.MultiCell(0, g.options.LineHeight-1, g.translate(entry.Description), "", "L", false)
		}
		g.pdf.SetTextColor(0, 0, 0)
		g.pdf.MultiCell(0, g.options.LineHeight-1, g.translate(entry.Recommendation), "", "L", false)
		g.pdf.Ln(4)
	}
}

// ensureSpace starts a new page when fewer than h mm remain.
func (g *PDFGenerator) ensureSpace(h float64) {
	_, pageHeight := g.pdf.GetPageSize()
	if g.pdf.GetY()+h > pageHeight-g.options.Margins.Bottom {
		g.pdf.AddPage()
	}
}

// PageCount returns the number of pages laid out so far.
func (g *PDFGenerator) PageCount() int {
	return g.pdf.PageCount()
}

func (g *PDFGenerator) setFooter() {
	g.pdf.SetFooterFunc(func() {
		if !g.options.IncludePageNum {
			return
		}
		g.pdf.SetY(-15)
		g.pdf.SetFont(g.options.FontFamily, "", 8)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", g.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}
