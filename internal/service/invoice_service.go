package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/klirr/klirr/internal/crypto"
	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/email"
	"github.com/klirr/klirr/internal/fx"
	"github.com/klirr/klirr/internal/logger"
	"github.com/klirr/klirr/internal/render"
	"github.com/klirr/klirr/internal/storage"
)

// EnvPathToPDFFile names a file to write the generated PDF path into, for
// scripts wrapping klirr.
const EnvPathToPDFFile = "TMP_FILE_FOR_PATH_TO_PDF"

// ItemsSelector picks what the invoice covers: the service fee (with
// optional time off) or the recorded expenses of the period.
type ItemsSelector struct {
	expenses bool
	timeOff  *domain.TimeOff
}

func ServiceItems() ItemsSelector {
	return ItemsSelector{}
}

func ServiceItemsWithTimeOff(timeOff domain.TimeOff) ItemsSelector {
	return ItemsSelector{timeOff: &timeOff}
}

func ExpenseItems() ItemsSelector {
	return ItemsSelector{expenses: true}
}

func (s ItemsSelector) IsExpenses() bool         { return s.expenses }
func (s ItemsSelector) TimeOff() *domain.TimeOff { return s.timeOff }

// InvoiceInput is the parsed request for one invoice
type InvoiceInput struct {
	Period     domain.Period
	Items      ItemsSelector
	OutputPath string
	Language   render.Language
	Layout     render.Layout
	SendEmail  bool
}

// PartialInvoice carries the resolved header and the line items still in
// their source currencies. Pricing turns it into a PreparedInvoice.
type PartialInvoice struct {
	Info        domain.InvoiceInfoFull
	Period      domain.Period
	Vendor      domain.CompanyInformation
	Client      domain.CompanyInformation
	Payment     domain.PaymentInformation
	SourceItems []domain.Item
	IsExpenses  bool
	OutputPath  string
}

// InvoiceService assembles and issues invoices:
// Parsed -> Loaded -> Partial -> Priced -> Rendered -> Emailed.
type InvoiceService interface {
	LoadData() (domain.Data, error)
	ToPartial(data domain.Data, input InvoiceInput) (PartialInvoice, error)
	ToPrepared(partial PartialInvoice, rates domain.ExchangeRates) (domain.PreparedInvoice, error)
	IssueInvoice(ctx context.Context, input InvoiceInput) (string, error)
}

type invoiceService struct {
	store       storage.Store
	oracle      fx.RateOracle
	renderer    render.InvoiceRenderer
	transport   email.EmailTransport
	invoicesDir string
	log         zerolog.Logger
}

func NewInvoiceService(
	store storage.Store,
	oracle fx.RateOracle,
	renderer render.InvoiceRenderer,
	transport email.EmailTransport,
	invoicesDir string,
) InvoiceService {
	return &invoiceService{
		store:       store,
		oracle:      oracle,
		renderer:    renderer,
		transport:   transport,
		invoicesDir: invoicesDir,
		log:         logger.WithComponent("invoice"),
	}
}

// LoadData reads and cross-validates the persisted dataset. A missing
// expenses file is an empty ledger, not an error.
func (s *invoiceService) LoadData() (domain.Data, error) {
	var data domain.Data
	if err := s.store.Load(storage.KeyInvoiceInfo, &data.InvoiceInfo); err != nil {
		return domain.Data{}, err
	}
	if err := s.store.Load(storage.KeyVendor, &data.Vendor); err != nil {
		return domain.Data{}, err
	}
	if err := s.store.Load(storage.KeyClient, &data.Client); err != nil {
		return domain.Data{}, err
	}
	if err := s.store.Load(storage.KeyPayment, &data.Payment); err != nil {
		return domain.Data{}, err
	}
	if err := s.store.Load(storage.KeyServiceFees, &data.ServiceFees); err != nil {
		return domain.Data{}, err
	}
	if s.store.Exists(storage.KeyExpenses) {
		if err := s.store.Load(storage.KeyExpenses, &data.Expenses); err != nil {
			return domain.Data{}, err
		}
	}
	if err := data.Validate(); err != nil {
		return domain.Data{}, err
	}
	return data, nil
}

// ToPartial resolves the target period against the dataset and computes
// the invoice header and source-currency line items.
func (s *invoiceService) ToPartial(data domain.Data, input InvoiceInput) (PartialInvoice, error) {
	target, err := input.Period.DowncastTo(data.PeriodKind())
	if err != nil {
		return PartialInvoice{}, err
	}

	invoiceDate := target.EndOfPeriod()
	dueDate := data.Payment.Terms.DueDate(invoiceDate)
	isExpenses := input.Items.IsExpenses()

	number, err := domain.ComputeInvoiceNumber(
		data.InvoiceInfo.Offset, target, isExpenses, data.InvoiceInfo.PeriodsOff)
	if err != nil {
		return PartialInvoice{}, err
	}

	var items []domain.Item
	if isExpenses {
		items, err = data.Expenses.Get(target)
		if err != nil {
			return PartialInvoice{}, err
		}
	} else {
		billable, err := domain.BillableQuantity(
			target, data.ServiceFees, input.Items.TimeOff(), data.InvoiceInfo.PeriodsOff)
		if err != nil {
			return PartialInvoice{}, err
		}
		item, err := domain.NewItem(
			data.ServiceFees.Name,
			data.ServiceFees.Rate.Price,
			data.Payment.Currency,
			billable,
			invoiceDate,
		)
		if err != nil {
			return PartialInvoice{}, err
		}
		items = []domain.Item{item}
	}

	outputPath := input.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(s.invoicesDir,
			domain.DefaultFileName(invoiceDate, data.Vendor.CompanyName, isExpenses, number))
	} else if !filepath.IsAbs(outputPath) {
		abs, err := filepath.Abs(outputPath)
		if err != nil {
			return PartialInvoice{}, fmt.Errorf("failed to resolve output path: %w", err)
		}
		outputPath = abs
	}

	emphasize := data.InvoiceInfo.EmphasizeColorHex
	if emphasize == "" {
		emphasize = domain.DefaultEmphasizeColorHex
	}

	return PartialInvoice{
		Info: domain.InvoiceInfoFull{
			Number:            number,
			InvoiceDate:       invoiceDate,
			DueDate:           dueDate,
			PurchaseOrder:     data.InvoiceInfo.PurchaseOrder,
			FooterText:        data.InvoiceInfo.FooterText,
			EmphasizeColorHex: emphasize,
		},
		Period:      target,
		Vendor:      data.Vendor,
		Client:      data.Client,
		Payment:     data.Payment,
		SourceItems: items,
		IsExpenses:  isExpenses,
		OutputPath:  outputPath,
	}, nil
}

// ToPrepared converts every line item into the target currency
func (s *invoiceService) ToPrepared(partial PartialInvoice, rates domain.ExchangeRates) (domain.PreparedInvoice, error) {
	converted := make([]domain.ConvertedItem, 0, len(partial.SourceItems))
	for _, item := range partial.SourceItems {
		c, err := item.ConvertInto(rates)
		if err != nil {
			return domain.PreparedInvoice{}, err
		}
		converted = append(converted, c)
	}
	return domain.PreparedInvoice{
		Info:    partial.Info,
		Vendor:  partial.Vendor,
		Client:  partial.Client,
		Payment: partial.Payment,
		LineItems: domain.LineItemsFlat{
			IsExpenses: partial.IsExpenses,
			Items:      converted,
		},
		OutputPath: partial.OutputPath,
	}, nil
}

// IssueInvoice runs the whole pipeline and returns the PDF path
func (s *invoiceService) IssueInvoice(ctx context.Context, input InvoiceInput) (string, error) {
	data, err := s.LoadData()
	if err != nil {
		return "", err
	}

	partial, err := s.ToPartial(data, input)
	if err != nil {
		return "", err
	}

	cache := fx.LoadCache(s.store)
	rates, err := cache.FetchForItems(ctx, partial.Payment.Currency, partial.SourceItems, s.oracle)
	if err != nil {
		return "", err
	}

	prepared, err := s.ToPrepared(partial, rates)
	if err != nil {
		return "", err
	}

	pdf, err := s.renderer.Render(input.Language, prepared, input.Layout)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(prepared.OutputPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(prepared.OutputPath, pdf, 0o644); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}
	s.log.Info().
		Str("path", prepared.OutputPath).
		Uint16("number", uint16(prepared.Info.Number)).
		Msg("invoice rendered")

	if hook := os.Getenv(EnvPathToPDFFile); hook != "" {
		if err := os.WriteFile(hook, []byte(prepared.OutputPath), 0o644); err != nil {
			s.log.Warn().Err(err).Msg("failed to write pdf path hook file")
		}
	}

	if input.SendEmail {
		if err := s.emailInvoice(ctx, prepared, partial.Period); err != nil {
			return "", err
		}
	}
	return prepared.OutputPath, nil
}

func (s *invoiceService) emailInvoice(ctx context.Context, prepared domain.PreparedInvoice, period domain.Period) error {
	var settings domain.EmailSettings
	if err := s.store.Load(storage.KeyEmailSettings, &settings); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("email settings invalid: %w", err)
	}
	passphrase, err := crypto.ResolvePassphrase()
	if err != nil {
		return err
	}
	defer passphrase.Zeroize()

	unlocked, err := settings.Unlock(passphrase)
	if err != nil {
		return err
	}
	defer unlocked.Close()

	outbound := email.Compose(settings, prepared.Info.Number, period, prepared.OutputPath)
	creds := email.Credentials{
		Server:      settings.SMTPServer,
		Username:    settings.Sender.Address,
		AppPassword: unlocked.AppPassword,
	}
	if err := s.transport.Send(ctx, outbound, creds); err != nil {
		return err
	}
	s.log.Info().Int("recipients", len(settings.Recipients)).Msg("invoice emailed")
	return nil
}
