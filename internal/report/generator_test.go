package report

import (
	"encoding/json"
	"strings"
	"testing"

	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *models.LedgerReport {
	return &models.LedgerReport{
		GeneratedAt: "2025-06-01 08:00:00",
		Currency:    models.Currency,
		Financials: models.Financials{
			TotalCredited:    decimal.RequireFromString("1250"),
			TotalSpent:       decimal.RequireFromString("300.5"),
			RemainingBalance: decimal.RequireFromString("949.5"),
			CreditsAdded:     decimal.RequireFromString("50"),
		},
		Divisions: []models.DivisionSummary{
			{
				Division:         "Events",
				StartingBalance:  decimal.RequireFromString("200"),
				CreditsAdded:     decimal.RequireFromString("50"),
				TotalSpent:       decimal.RequireFromString("250"),
				RemainingBalance: decimal.Zero,
			},
			{
				Division:         "Library",
				StartingBalance:  decimal.RequireFromString("1000"),
				CreditsAdded:     decimal.Zero,
				TotalSpent:       decimal.RequireFromString("50.5"),
				RemainingBalance: decimal.RequireFromString("949.5"),
			},
		},
	}
}

func TestReportGenerator_GenerateReport_JSON(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())

	jsonBytes, err := generator.GenerateReport(sampleReport(), "json")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
	assert.Equal(t, "AED", decoded["currency"])

	fin := decoded["financials"].(map[string]interface{})
	assert.Equal(t, "949.5", fin["remaining_balance"], "decimals are rendered as strings")

	divs := decoded["divisions"].([]interface{})
	require.Len(t, divs, 2)
	assert.Equal(t, "Events", divs[0].(map[string]interface{})["division"])
}

func TestReportGenerator_GenerateReport_YAML(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())

	out, err := generator.GenerateReport(sampleReport(), "YAML")
	require.NoError(t, err)

	var decoded struct {
		GeneratedAt string `yaml:"generated_at"`
		Divisions   []struct {
			Division   string `yaml:"division"`
			TotalSpent string `yaml:"total_spent"`
		} `yaml:"divisions"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "2025-06-01 08:00:00", decoded.GeneratedAt)
	require.Len(t, decoded.Divisions, 2)
	assert.Equal(t, "Library", decoded.Divisions[1].Division)
	assert.Equal(t, "50.5", decoded.Divisions[1].TotalSpent)
}

func TestReportGenerator_GenerateReport_CSV(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())

	out, err := generator.GenerateReport(sampleReport(), "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Division,Starting Balance,Credits Added,Total Spent,Remaining Balance", lines[0])
	assert.Equal(t, "Events,200,50,250,0", lines[1])
	assert.Equal(t, "Library,1000,0,50.5,949.5", lines[2])
}

func TestReportGenerator_GenerateReport_CSVEmpty(t *testing.T) {
	generator := NewReportGenerator(nil)

	out, err := generator.GenerateReport(&models.LedgerReport{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "Division,Starting Balance,Credits Added,Total Spent,Remaining Balance\n", string(out))
}

func TestReportGenerator_GenerateReport_UnsupportedFormat(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())

	_, err := generator.GenerateReport(sampleReport(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")

	_, err = generator.GenerateReport(nil, "json")
	assert.Error(t, err)
}
