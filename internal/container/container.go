// Package container provides dependency injection for the divledger application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/divledger/internal/api"
	"fjacquet/divledger/internal/config"
	"fjacquet/divledger/internal/ledger"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/receipt"
	"fjacquet/divledger/internal/report"
	"fjacquet/divledger/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
// It acts as the central registry for dependency injection, ensuring that all
// components receive their required dependencies through constructors.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    *store.LedgerStore
	ledger   *ledger.Ledger
	receipts *receipt.Store
	reports  *report.ReportGenerator
}

// NewContainer creates and wires all application dependencies, logging
// through logrus as configured.
//
// The ledger files are created (and upgraded to the current schema) here,
// so every command sees an initialized data directory.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ledgerStore := store.NewLedgerStore(cfg.TransactionsPath(), cfg.DivisionsPath(), cfg.Delimiter(), logger)
	if err := ledgerStore.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize ledger store: %w", err)
	}

	clock := store.SystemClock{}
	l := ledger.NewLedger(ledgerStore, store.UUIDGenerator{}, clock, logger)
	l.SetIDAttempts(cfg.Ledger.IDAttempts)

	receipts := receipt.NewStore(cfg.ReceiptsPath(), int64(cfg.Server.MaxUploadMB)<<20, clock, logger)

	logger.Debug("Container initialized successfully",
		logging.F(logging.FieldFile, cfg.TransactionsPath()),
		logging.F("admin_enabled", cfg.AdminEnabled()))

	return &Container{
		logger:   logger,
		config:   cfg,
		store:    ledgerStore,
		ledger:   l,
		receipts: receipts,
		reports:  report.NewReportGenerator(logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the container's ledger store instance.
func (c *Container) GetStore() *store.LedgerStore {
	return c.store
}

// GetLedger returns the ledger every command and handler goes through.
func (c *Container) GetLedger() *ledger.Ledger {
	return c.ledger
}

// GetReceipts returns the receipt store.
func (c *Container) GetReceipts() *receipt.Store {
	return c.receipts
}

// GetReportGenerator returns the report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// NewAPIServer builds the HTTP API over the container's ledger and receipts.
func (c *Container) NewAPIServer() *api.Server {
	return api.NewServer(c.ledger, c.receipts, api.Options{
		AdminSecret:    c.config.Admin.Secret,
		MaxUploadBytes: int64(c.config.Server.MaxUploadMB) << 20,
	}, c.logger)
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
