package app

import (
	"fmt"

	"github.com/klirr/klirr/internal/config"
	"github.com/klirr/klirr/internal/email"
	"github.com/klirr/klirr/internal/fx"
	"github.com/klirr/klirr/internal/render"
	"github.com/klirr/klirr/internal/service"
	"github.com/klirr/klirr/internal/storage"
)

// App is the dependency container for all application components
type App struct {
	Config *config.Config
	Store  storage.Store

	Invoices service.InvoiceService
	Data     service.DataService
	Email    service.EmailService
	Renderer render.InvoiceRenderer
}

// New wires the capabilities: yaml file store, HTTP rate oracle, gofpdf
// renderer, SMTP transport.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	store := storage.NewFileStore(cfg.DataDir)
	oracle := fx.NewHTTPOracle()
	renderer := render.NewPDFRenderer()
	transport := email.NewSMTPTransport()

	return &App{
		Config:   cfg,
		Store:    store,
		Invoices: service.NewInvoiceService(store, oracle, renderer, transport, cfg.InvoicesDir),
		Data:     service.NewDataService(store),
		Email:    service.NewEmailService(store, transport),
		Renderer: renderer,
	}, nil
}
