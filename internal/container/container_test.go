package container

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fjacquet/divledger/internal/config"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Directory = filepath.Join(t.TempDir(), "data")
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      func(t *testing.T) *config.Config { return nil },
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "default config",
			config: testConfig,
		},
		{
			name: "json logging with admin secret",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(t)
				cfg.Log.Level = "debug"
				cfg.Log.Format = "json"
				cfg.Admin.Secret = "x"
				return cfg
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(tt.config(t))
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.NotNil(t, c.GetLogger())
			assert.NotNil(t, c.GetConfig())
			assert.NotNil(t, c.GetStore())
			assert.NotNil(t, c.GetLedger())
			assert.NotNil(t, c.GetReceipts())
			assert.NotNil(t, c.GetReportGenerator())
			assert.NoError(t, c.Close())
		})
	}
}

func TestNewContainer_InitializesDataDirectory(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	assert.FileExists(t, cfg.TransactionsPath())
	assert.FileExists(t, cfg.DivisionsPath())
	version, err := c.GetStore().CurrentSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, store.SchemaVersion, version)
	assert.Equal(t, cfg.ReceiptsPath(), c.GetReceipts().Dir)
	assert.Equal(t, int64(10<<20), c.GetReceipts().MaxBytes)
}

func TestNewContainer_LedgerIsWiredToFiles(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	ok, err := c.GetLedger().AddDivision("Events", decimal.NewFromInt(200))
	require.NoError(t, err)
	require.True(t, ok)

	// A second container over the same directory sees the division.
	again, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"Events"}, again.GetLedger().DivisionNames())
}

func TestNewContainerWithLogger_NilLogger(t *testing.T) {
	_, err := NewContainerWithLogger(testConfig(t), nil)
	assert.Error(t, err)
}

func TestNewAPIServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Admin.Secret = "topsecret"

	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	srv := c.NewAPIServer()
	req := httptest.NewRequest("GET", "/api/locations", nil)
	req.Header.Set("X-Admin-Secret", "topsecret")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
