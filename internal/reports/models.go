// Package reports renders the downloadable planning report and the tabular
// exports of stored simulations and community reports.
package reports

import (
	"strings"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/insights"
)

// DefaultTitle is used when a report request has no title.
const DefaultTitle = "Urban Planning Report"

// PDFFilename is the attachment name of the rendered report.
const PDFFilename = "urban-planning-report.pdf"

// GenerateRequest is the payload of a report rendering.
type GenerateRequest struct {
	Title string     `json:"title"`
	Data  ReportData `json:"data"`
}

// ReportData is the content of the report. Metrics values may be numbers or
// strings; they are printed as sent.
type ReportData struct {
	Metrics  map[string]interface{} `json:"metrics"`
	Insights []insights.Insight     `json:"insights"`
}

// Dataset names an exportable collection.
type Dataset string

const (
	DatasetSimulations Dataset = "simulations"
	DatasetCommunity   Dataset = "community"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseDataset validates a dataset path segment.
func ParseDataset(raw string) (Dataset, error) {
	switch d := Dataset(strings.ToLower(raw)); d {
	case DatasetSimulations, DatasetCommunity:
		return d, nil
	default:
		return "", apperrors.Validation("unknown dataset %q", raw)
	}
}

// ParseFormat validates a format query value; empty means CSV.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(raw)); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", apperrors.Validation("unsupported format %q", raw)
	}
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}
