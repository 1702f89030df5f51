package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/models"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Supported report formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// Formats lists the accepted values of the --format flag.
var Formats = []string{FormatJSON, FormatYAML, FormatCSV}

// summaryColumns is the CSV header written when there are no divisions.
var summaryColumns = []string{"Division", "Starting Balance", "Credits Added", "Total Spent", "Remaining Balance"}

// ReportGenerator renders ledger reports in various formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ReportGenerator{
		logger: logger.WithField("component", "ReportGenerator"),
	}
}

// GenerateReport renders report as json, yaml or csv. The csv form carries
// the per-division summary table only.
func (g *ReportGenerator) GenerateReport(report *models.LedgerReport, format string) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		return g.generateJSONReport(report)
	case FormatYAML, "yml":
		return g.generateYAMLReport(report)
	case FormatCSV:
		return g.generateCSVReport(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(report *models.LedgerReport) ([]byte, error) {
	jsonReport, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(jsonReport, '\n'), nil
}

func (g *ReportGenerator) generateYAMLReport(report *models.LedgerReport) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) generateCSVReport(report *models.LedgerReport) ([]byte, error) {
	if len(report.Divisions) == 0 {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(summaryColumns); err != nil {
			return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	}

	out, err := gocsv.MarshalBytes(report.Divisions)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return out, nil
}
