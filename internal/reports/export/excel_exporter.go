package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter writes tables as an .xlsx workbook
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
}

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	FreezeHeader    bool
	AutoFilter      bool
	AutoWidth       bool
	TimestampFormat string
	HeaderStyle     *ExcelStyleConfig
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool
	FontSize  float64
	FontColor string
	FillColor string
	Alignment string // left, center, right
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		FreezeHeader:    true,
		AutoFilter:      true,
		AutoWidth:       true,
		TimestampFormat: "yyyy-mm-dd hh:mm:ss",
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "2E7D32",
			FontColor: "FFFFFF",
			Alignment: "center",
		},
	}
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	return &ExcelExporter{
		file:    excelize.NewFile(),
		options: options,
	}
}

// WriteTable writes t to a sheet named after it, replacing the default sheet.
func (e *ExcelExporter) WriteTable(t Table) error {
	sheet := t.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := e.file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.writeHeader(sheet, t.Labels()); err != nil {
		return err
	}

	timestampStyle, err := e.file.NewStyle(&excelize.Style{CustomNumFmt: &e.options.TimestampFormat})
	if err != nil {
		return fmt.Errorf("failed to create timestamp style: %w", err)
	}

	widths := make([]float64, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = estimateWidth(c.Label)
	}

	for rowIdx, row := range t.Rows {
		for colIdx := range t.Columns {
			if colIdx >= len(row) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			val := cellValue(row[colIdx])
			if err := e.file.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			if _, ok := val.(time.Time); ok {
				_ = e.file.SetCellStyle(sheet, cell, cell, timestampStyle)
			}
			if w := estimateWidth(val); w > widths[colIdx] {
				widths[colIdx] = w
			}
		}
	}

	if e.options.AutoFilter && len(t.Columns) > 0 {
		lastCell, _ := excelize.CoordinatesToCellName(len(t.Columns), len(t.Rows)+1)
		if err := e.file.AutoFilter(sheet, "A1:"+lastCell, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}

	for i, c := range t.Columns {
		width := c.Width
		if width == 0 && e.options.AutoWidth {
			// Min width 10, max width 60
			width = clampWidth(widths[i], 10, 60)
		}
		if width > 0 {
			col, _ := excelize.ColumnNumberToName(i + 1)
			_ = e.file.SetColWidth(sheet, col, col, width)
		}
	}

	return nil
}

func (e *ExcelExporter) writeHeader(sheet string, labels []string) error {
	styleID := 0
	if e.options.HeaderStyle != nil {
		id, err := e.createStyle(e.options.HeaderStyle)
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		styleID = id
	}

	for i, label := range labels {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(sheet, cell, label); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if styleID > 0 {
			_ = e.file.SetCellStyle(sheet, cell, cell, styleID)
		}
	}

	if e.options.FreezeHeader {
		return e.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}

// WriteTo writes the workbook to w
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close releases the workbook
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

func (e *ExcelExporter) createStyle(config *ExcelStyleConfig) (int, error) {
	style := &excelize.Style{
		Font: &excelize.Font{
			Bold:  config.FontBold,
			Size:  config.FontSize,
			Color: config.FontColor,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	}
	if config.FillColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{config.FillColor}, Pattern: 1}
	}
	if config.Alignment != "" {
		style.Alignment = &excelize.Alignment{Horizontal: config.Alignment, Vertical: "center"}
	}
	return e.file.NewStyle(style)
}

// cellValue unwraps values excelize cannot write directly.
func cellValue(val interface{}) interface{} {
	switch v := val.(type) {
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	case fmt.Stringer:
		if _, ok := v.(time.Time); ok {
			return v
		}
		return v.String()
	default:
		return v
	}
}

func estimateWidth(val interface{}) float64 {
	switch v := val.(type) {
	case nil:
		return 0
	case string:
		return float64(len(v)) * 1.1
	case time.Time:
		return 20
	default:
		return float64(len(fmt.Sprintf("%v", v))) * 1.1
	}
}

func clampWidth(w, lo, hi float64) float64 {
	if w < lo {
		return lo
	}
	if w > hi {
		return hi
	}
	return w
}
