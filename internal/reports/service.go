package reports

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/community"
	"smart-urban-planner/planner-backend/internal/reports/export"
	"smart-urban-planner/planner-backend/internal/simulations"
	"smart-urban-planner/planner-backend/internal/telemetry"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SimulationLister lists stored simulation runs.
type SimulationLister interface {
	ListSimulations(ctx context.Context) ([]simulations.Simulation, error)
}

// CommunityLister lists stored community reports.
type CommunityLister interface {
	ListReports(ctx context.Context) ([]community.Report, error)
}

// Service renders reports and exports.
type Service struct {
	simulations SimulationLister
	community   CommunityLister
	pdfOptions  export.PDFOptions
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new reports service
func NewService(sims SimulationLister, board CommunityLister, logger *zap.Logger) *Service {
	return &Service{
		simulations: sims,
		community:   board,
		pdfOptions:  export.DefaultPDFOptions(),
		logger:      logger,
		now:         time.Now,
	}
}

// GeneratePDF renders the metrics and insights of req. There is no fallback:
// a rendering failure is returned as ErrUpstreamUnavailable.
func (s *Service) GeneratePDF(ctx context.Context, req GenerateRequest) (*File, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}

	report := export.PlanningReport{
		Title:       title,
		GeneratedAt: s.now(),
		Metrics:     metricLines(req.Data.Metrics),
	}
	for _, in := range req.Data.Insights {
		report.Recommendations = append(report.Recommendations, export.RecommendationEntry{
			Title:          in.Title,
			Severity:       string(in.Severity),
			Description:    in.Description,
			Recommendation: in.Recommendation,
		})
	}

	body, err := export.NewPDFGenerator(s.pdfOptions).Render(report)
	if err != nil {
		return nil, apperrors.Upstream("pdf renderer", err)
	}
	telemetry.ReportsRendered.WithLabelValues("pdf").Inc()

	s.logger.Info("Planning report generated",
		zap.String("title", title),
		zap.Int("metrics", len(report.Metrics)),
		zap.Int("recommendations", len(report.Recommendations)),
		zap.Int("bytes", len(body)),
	)

	return &File{Name: PDFFilename, ContentType: contentTypePDF, Body: body}, nil
}

// metricLines orders metrics by name and formats their values.
func metricLines(metrics map[string]interface{}) []export.MetricLine {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]export.MetricLine, 0, len(names))
	for _, name := range names {
		lines = append(lines, export.MetricLine{Name: name, Value: formatMetric(metrics[name])})
	}
	return lines
}

func formatMetric(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "n/a"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Export renders a stored collection as CSV or XLSX.
func (s *Service) Export(ctx context.Context, dataset Dataset, format Format) (*File, error) {
	var (
		table export.Table
		err   error
	)
	switch dataset {
	case DatasetSimulations:
		table, err = s.simulationTable(ctx)
	case DatasetCommunity:
		table, err = s.communityTable(ctx)
	default:
		return nil, apperrors.Validation("unknown dataset %q", dataset)
	}
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC().Format("20060102-150405")
	file := &File{Name: fmt.Sprintf("%s-%s.%s", dataset, stamp, format)}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		if err := export.NewCSVExporter(&buf, export.DefaultCSVOptions()).WriteTable(table); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
		file.ContentType = contentTypeCSV
	case FormatXLSX:
		xlsx := export.NewExcelExporter(export.DefaultExcelOptions())
		defer xlsx.Close()
		if err := xlsx.WriteTable(table); err != nil {
			return nil, fmt.Errorf("failed to write xlsx: %w", err)
		}
		if err := xlsx.WriteTo(&buf); err != nil {
			return nil, fmt.Errorf("failed to write xlsx: %w", err)
		}
		file.ContentType = contentTypeXLSX
	default:
		return nil, apperrors.Validation("unsupported format %q", format)
	}
	file.Body = buf.Bytes()
	telemetry.ReportsRendered.WithLabelValues(string(format)).Inc()

	s.logger.Info("Dataset exported",
		zap.String("dataset", string(dataset)),
		zap.String("format", string(format)),
		zap.Int("rows", len(table.Rows)),
	)
	return file, nil
}

func (s *Service) simulationTable(ctx context.Context) (export.Table, error) {
	sims, err := s.simulations.ListSimulations(ctx)
	if err != nil {
		return export.Table{}, err
	}

	table := export.Table{
		Name: "Simulations",
		Columns: []export.Column{
			{Key: "id", Label: "ID", Width: 38},
			{Key: "name", Label: "Name"},
			{Key: "location", Label: "Location"},
			{Key: "trees", Label: "Trees"},
			{Key: "housing", Label: "Housing"},
			{Key: "water", Label: "Water"},
			{Key: "renewables", Label: "Renewables"},
			{Key: "airQuality", Label: "Air Quality"},
			{Key: "vegetation", Label: "Vegetation"},
			{Key: "temperature", Label: "Temperature"},
			{Key: "createdAt", Label: "Created At"},
		},
	}
	for _, sim := range sims {
		var air, veg, temp string
		if sim.Predictions != nil {
			air, veg, temp = sim.Predictions.AirQuality, sim.Predictions.Vegetation, sim.Predictions.Temperature
		}
		table.Rows = append(table.Rows, []interface{}{
			sim.ID,
			sim.Name,
			sim.Location,
			sim.Interventions.Magnitude(simulations.InterventionTrees),
			sim.Interventions.Magnitude(simulations.InterventionHousing),
			sim.Interventions.Magnitude(simulations.InterventionWater),
			sim.Interventions.Magnitude(simulations.InterventionRenewables),
			air,
			veg,
			temp,
			sim.CreatedAt,
		})
	}
	return table, nil
}

func (s *Service) communityTable(ctx context.Context) (export.Table, error) {
	reports, err := s.community.ListReports(ctx)
	if err != nil {
		return export.Table{}, err
	}

	table := export.Table{
		Name: "Community Reports",
		Columns: []export.Column{
			{Key: "id", Label: "ID", Width: 38},
			{Key: "category", Label: "Category"},
			{Key: "location", Label: "Location"},
			{Key: "description", Label: "Description"},
			{Key: "latitude", Label: "Latitude"},
			{Key: "longitude", Label: "Longitude"},
			{Key: "status", Label: "Status"},
			{Key: "upvotes", Label: "Upvotes"},
			{Key: "createdAt", Label: "Created At"},
		},
	}
	for _, r := range reports {
		table.Rows = append(table.Rows, []interface{}{
			r.ID,
			string(r.Category),
			r.Location,
			r.Description,
			r.Latitude,
			r.Longitude,
			string(r.Status),
			r.Upvotes,
			r.CreatedAt,
		})
	}
	return table, nil
}
