package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/klirr/klirr/internal/crypto"
	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/email"
	"github.com/klirr/klirr/internal/render"
	"github.com/klirr/klirr/internal/storage"
)

// in-memory store that round-trips yaml like the file store does
type fakeStore struct {
	files map[storage.Key][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[storage.Key][]byte{}}
}

func (f *fakeStore) Load(key storage.Key, into any) error {
	data, ok := f.files[key]
	if !ok {
		return fmt.Errorf("no such key %s", key)
	}
	return yaml.Unmarshal(data, into)
}

func (f *fakeStore) Save(key storage.Key, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	f.files[key] = data
	return nil
}

func (f *fakeStore) Exists(key storage.Key) bool {
	_, ok := f.files[key]
	return ok
}

func (f *fakeStore) Path(key storage.Key) string { return "mem://" + string(key) }

type fixedOracle struct {
	calls int
	rate  string
}

func (o *fixedOracle) GetRate(ctx context.Context, date domain.Date, from, to domain.Currency) (decimal.Decimal, error) {
	o.calls++
	return decimal.NewFromString(o.rate)
}

type stubRenderer struct {
	rendered int
}

func (r *stubRenderer) Render(lang render.Language, invoice domain.PreparedInvoice, layout render.Layout) ([]byte, error) {
	r.rendered++
	return []byte("%PDF-1.4 stub"), nil
}

type recordingTransport struct {
	sent  []email.OutboundEmail
	creds []email.Credentials
}

func (t *recordingTransport) Send(ctx context.Context, e email.OutboundEmail, creds email.Credentials) error {
	t.sent = append(t.sent, e)
	t.creds = append(t.creds, creds)
	return nil
}

func seedStore(t *testing.T, store storage.Store, data domain.Data) {
	t.Helper()
	saves := map[storage.Key]any{
		storage.KeyInvoiceInfo: data.InvoiceInfo,
		storage.KeyVendor:      data.Vendor,
		storage.KeyClient:      data.Client,
		storage.KeyPayment:     data.Payment,
		storage.KeyServiceFees: data.ServiceFees,
	}
	for key, v := range saves {
		if err := store.Save(key, v); err != nil {
			t.Fatal(err)
		}
	}
}

func testService(store storage.Store, oracle *fixedOracle, transport *recordingTransport, dir string) InvoiceService {
	if oracle == nil {
		oracle = &fixedOracle{rate: "1"}
	}
	if transport == nil {
		transport = &recordingTransport{}
	}
	return NewInvoiceService(store, oracle, &stubRenderer{}, transport, dir)
}

func mustPeriod(t *testing.T, s string) domain.Period {
	t.Helper()
	p, err := domain.ParsePeriod(s, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDataWithoutExpensesFile(t *testing.T) {
	store := newFakeStore()
	seedStore(t, store, SampleData())

	svc := testService(store, nil, nil, t.TempDir())
	data, err := svc.LoadData()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := data.Expenses.Get(mustPeriod(t, "2025-01")); !errors.Is(err, domain.ErrExpensesMissing) {
		t.Errorf("empty ledger should miss every period, got %v", err)
	}
}

func TestToPartialFirstServiceInvoice(t *testing.T) {
	svc := testService(newFakeStore(), nil, nil, t.TempDir())
	partial, err := svc.ToPartial(SampleData(), InvoiceInput{
		Period: mustPeriod(t, "2025-01"),
		Items:  ServiceItems(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if partial.Info.Number != 100 {
		t.Errorf("number = %d, want 100", partial.Info.Number)
	}
	if got := partial.Info.InvoiceDate.String(); got != "2025-01-31" {
		t.Errorf("invoice date = %s", got)
	}
	if got := partial.Info.DueDate.String(); got != "2025-03-02" {
		t.Errorf("due date = %s", got)
	}
	if len(partial.SourceItems) != 1 {
		t.Fatalf("items = %d, want 1", len(partial.SourceItems))
	}
	item := partial.SourceItems[0]
	if !item.Quantity.Equal(domain.AmountFromInt(23)) {
		t.Errorf("quantity = %s, want 23 working days", item.Quantity)
	}
	if item.Currency != domain.EUR {
		t.Errorf("currency = %s", item.Currency)
	}
}

func TestToPreparedTotal(t *testing.T) {
	svc := testService(newFakeStore(), nil, nil, t.TempDir())
	data := SampleData()
	partial, err := svc.ToPartial(data, InvoiceInput{
		Period: mustPeriod(t, "2025-01"),
		Items:  ServiceItems(),
	})
	if err != nil {
		t.Fatal(err)
	}
	prepared, err := svc.ToPrepared(partial, domain.ExchangeRates{Target: domain.EUR})
	if err != nil {
		t.Fatal(err)
	}
	if total := prepared.LineItems.Total(); !total.Equal(domain.AmountFromInt(23000)) {
		t.Errorf("total = %s, want 23000", total)
	}
}

func TestToPartialDefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	svc := testService(newFakeStore(), nil, nil, dir)
	partial, err := svc.ToPartial(SampleData(), InvoiceInput{
		Period: mustPeriod(t, "2025-01"),
		Items:  ServiceItems(),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "2025-01-31_Acme_Consulting_AB_invoice_100.pdf")
	if partial.OutputPath != want {
		t.Errorf("path = %s, want %s", partial.OutputPath, want)
	}
}

func TestToPartialResolvesRelativeOutputPath(t *testing.T) {
	svc := testService(newFakeStore(), nil, nil, t.TempDir())
	partial, err := svc.ToPartial(SampleData(), InvoiceInput{
		Period:     mustPeriod(t, "2025-01"),
		Items:      ServiceItems(),
		OutputPath: "invoice.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(partial.OutputPath) {
		t.Errorf("path = %s, want absolute", partial.OutputPath)
	}
	if filepath.Base(partial.OutputPath) != "invoice.pdf" {
		t.Errorf("path = %s", partial.OutputPath)
	}
}

func TestToPartialExpensesInvoice(t *testing.T) {
	data := SampleData()
	period := mustPeriod(t, "2025-02")
	item, err := domain.ParseItem("Train ticket,250,EUR,2,2025-02-10")
	if err != nil {
		t.Fatal(err)
	}
	data.Expenses.Insert(period, []domain.Item{item})

	svc := testService(newFakeStore(), nil, nil, t.TempDir())
	partial, err := svc.ToPartial(data, InvoiceInput{
		Period: period,
		Items:  ExpenseItems(),
	})
	if err != nil {
		t.Fatal(err)
	}
	// one later than the service invoice of the same period
	if partial.Info.Number != 102 {
		t.Errorf("number = %d, want 102", partial.Info.Number)
	}
	if !partial.IsExpenses {
		t.Error("IsExpenses not set")
	}
	if len(partial.SourceItems) != 1 || partial.SourceItems[0].Name != "Train ticket" {
		t.Errorf("items = %+v", partial.SourceItems)
	}
	if !strings.Contains(partial.OutputPath, "_expenses_invoice_102.pdf") {
		t.Errorf("path = %s", partial.OutputPath)
	}
}

func TestToPartialExpensesMissingPeriod(t *testing.T) {
	svc := testService(newFakeStore(), nil, nil, t.TempDir())
	_, err := svc.ToPartial(SampleData(), InvoiceInput{
		Period: mustPeriod(t, "2025-02"),
		Items:  ExpenseItems(),
	})
	if !errors.Is(err, domain.ErrExpensesMissing) {
		t.Errorf("want ErrExpensesMissing, got %v", err)
	}
}

func TestIssueInvoiceWritesPDF(t *testing.T) {
	store := newFakeStore()
	seedStore(t, store, SampleData())
	oracle := &fixedOracle{rate: "1"}
	dir := t.TempDir()

	hook := filepath.Join(dir, "pdf-path.txt")
	t.Setenv(EnvPathToPDFFile, hook)

	svc := testService(store, oracle, nil, dir)
	path, err := svc.IssueInvoice(context.Background(), InvoiceInput{
		Period:   mustPeriod(t, "2025-01"),
		Items:    ServiceItems(),
		Language: render.LanguageEnglish,
		Layout:   render.LayoutAioo,
	})
	if err != nil {
		t.Fatal(err)
	}

	pdf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(pdf) != "%PDF-1.4 stub" {
		t.Errorf("pdf content = %q", pdf)
	}
	// line item is already in the payment currency
	if oracle.calls != 0 {
		t.Errorf("oracle calls = %d, want 0", oracle.calls)
	}
	hooked, err := os.ReadFile(hook)
	if err != nil {
		t.Fatal(err)
	}
	if string(hooked) != path {
		t.Errorf("hook file = %q, want %q", hooked, path)
	}
}

func TestIssueInvoiceSendsEmail(t *testing.T) {
	store := newFakeStore()
	seedStore(t, store, SampleData())

	t.Setenv(crypto.EnvPassphrase, "open sesame")
	passphrase := crypto.NewSecretString("open sesame")
	salt, err := crypto.NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	key := crypto.DeriveKey(passphrase, salt)
	sealed, err := crypto.Seal(crypto.NewSecretString("app-password"), key)
	if err != nil {
		t.Fatal(err)
	}
	settings := domain.EmailSettings{
		Salt:              salt,
		SealedAppPassword: sealed,
		SMTPServer:        domain.SMTPServer{Host: "smtp.example.com", Port: 587},
		Sender:            domain.EmailAccount{Name: "Jane", Address: "jane@example.com"},
		Recipients:        []domain.EmailAccount{{Address: "billing@example.com"}},
		Template: domain.EmailTemplate{
			Subject: "Invoice {number}",
			Body:    "Invoice for {period} attached.",
		},
	}
	if err := store.Save(storage.KeyEmailSettings, settings); err != nil {
		t.Fatal(err)
	}

	transport := &recordingTransport{}
	dir := t.TempDir()
	svc := testService(store, nil, transport, dir)
	path, err := svc.IssueInvoice(context.Background(), InvoiceInput{
		Period:    mustPeriod(t, "2025-01"),
		Items:     ServiceItems(),
		Language:  render.LanguageEnglish,
		Layout:    render.LayoutAioo,
		SendEmail: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("sent = %d emails, want 1", len(transport.sent))
	}
	sent := transport.sent[0]
	if sent.Subject != "Invoice 100" {
		t.Errorf("subject = %q", sent.Subject)
	}
	if !strings.Contains(sent.Body, "2025-01") {
		t.Errorf("body = %q", sent.Body)
	}
	if len(sent.Attachments) != 1 || sent.Attachments[0] != path {
		t.Errorf("attachments = %v", sent.Attachments)
	}
	creds := transport.creds[0]
	if creds.Username != "jane@example.com" {
		t.Errorf("username = %s", creds.Username)
	}
	if creds.AppPassword.Expose() != "app-password" {
		t.Error("app password did not survive seal and unlock")
	}
}

func TestIssueInvoiceRejectsSettingsWithoutRecipients(t *testing.T) {
	store := newFakeStore()
	seedStore(t, store, SampleData())

	passphrase := crypto.NewSecretString("open sesame")
	salt, err := crypto.NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	key := crypto.DeriveKey(passphrase, salt)
	sealed, err := crypto.Seal(crypto.NewSecretString("app-password"), key)
	if err != nil {
		t.Fatal(err)
	}
	// a hand-edited file can drop the recipients list
	settings := domain.EmailSettings{
		Salt:              salt,
		SealedAppPassword: sealed,
		SMTPServer:        domain.SMTPServer{Host: "smtp.example.com", Port: 587},
		Sender:            domain.EmailAccount{Address: "jane@example.com"},
	}
	if err := store.Save(storage.KeyEmailSettings, settings); err != nil {
		t.Fatal(err)
	}

	transport := &recordingTransport{}
	svc := testService(store, nil, transport, t.TempDir())
	_, err = svc.IssueInvoice(context.Background(), InvoiceInput{
		Period:    mustPeriod(t, "2025-01"),
		Items:     ServiceItems(),
		Language:  render.LanguageEnglish,
		Layout:    render.LayoutAioo,
		SendEmail: true,
	})
	if err == nil {
		t.Fatal("settings without recipients accepted")
	}
	if !strings.Contains(err.Error(), "recipient") {
		t.Errorf("err = %v", err)
	}
	if len(transport.sent) != 0 {
		t.Errorf("sent = %d emails, want 0", len(transport.sent))
	}
}

func TestRenderSampleWritesPDF(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderSample(&stubRenderer{}, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %s, want inside %s", path, dir)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
