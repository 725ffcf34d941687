package render

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/klirr/klirr/internal/domain"
)

// ErrRender wraps layout and typesetting failures
var ErrRender = errors.New("failed to render invoice")

// Layout names a page layout. Each layout declares the font it needs.
type Layout string

const (
	LayoutAioo Layout = "Aioo"
	LayoutTest Layout = "Test"
)

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "aioo":
		return LayoutAioo, nil
	case "test":
		return LayoutTest, nil
	}
	return "", fmt.Errorf("unknown layout %q (want Aioo or Test)", s)
}

// Font returns the font family the layout requires
func (l Layout) Font() string {
	if l == LayoutTest {
		return "Courier"
	}
	return "Helvetica"
}

// InvoiceRenderer turns a fully resolved invoice into PDF bytes
type InvoiceRenderer interface {
	Render(lang Language, invoice domain.PreparedInvoice, layout Layout) ([]byte, error)
}

// PDFRenderer is the reference renderer built on gofpdf
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(lang Language, invoice domain.PreparedInvoice, layout Layout) ([]byte, error) {
	l, err := newInvoiceLayout(lang, invoice, layout)
	if err != nil {
		return nil, err
	}
	if err := l.draw(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

type invoiceLayout struct {
	pdf     *gofpdf.Fpdf
	tr      func(string) string
	labels  labels
	invoice domain.PreparedInvoice
	layout  Layout
	font    string
	accent  [3]int
}

func newInvoiceLayout(lang Language, invoice domain.PreparedInvoice, layout Layout) (*invoiceLayout, error) {
	accent, err := parseHexColor(invoice.Info.EmphasizeColorHex)
	if err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	return &invoiceLayout{
		pdf:     pdf,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		labels:  labelsFor(lang),
		invoice: invoice,
		layout:  layout,
		font:    layout.Font(),
		accent:  accent,
	}, nil
}

func (l *invoiceLayout) draw() error {
	l.pdf.SetMargins(18, 18, 18)
	l.pdf.AddPage()
	l.drawHeader()
	l.drawParties()
	if err := l.drawLineItems(); err != nil {
		return err
	}
	if err := l.drawTotals(); err != nil {
		return err
	}
	l.drawPaymentInfo()
	l.drawFooter()
	if l.pdf.Err() {
		return fmt.Errorf("%w: %w", ErrRender, l.pdf.Error())
	}
	return nil
}

func (l *invoiceLayout) drawHeader() {
	title := l.labels.Invoice
	if l.invoice.LineItems.IsExpenses {
		title = l.labels.ExpenseReport
	}
	if l.layout == LayoutAioo {
		l.pdf.SetTextColor(l.accent[0], l.accent[1], l.accent[2])
	}
	l.pdf.SetFont(l.font, "B", 24)
	l.pdf.CellFormat(0, 12, l.tr(title), "", 1, "L", false, 0, "")
	l.pdf.SetTextColor(0, 0, 0)

	l.pdf.SetFont(l.font, "", 10)
	info := l.invoice.Info
	l.keyValue(l.labels.InvoiceNumber, fmt.Sprintf("%d", info.Number))
	l.keyValue(l.labels.InvoiceDate, info.InvoiceDate.String())
	l.keyValue(l.labels.DueDate, info.DueDate.String())
	if info.PurchaseOrder != "" {
		l.keyValue(l.labels.PurchaseOrder, info.PurchaseOrder)
	}
	l.pdf.Ln(6)
}

func (l *invoiceLayout) drawParties() {
	drawCompany := func(heading string, c domain.CompanyInformation) {
		l.pdf.SetFont(l.font, "B", 10)
		l.pdf.CellFormat(0, 6, l.tr(heading), "", 1, "L", false, 0, "")
		l.pdf.SetFont(l.font, "", 10)
		lines := []string{c.CompanyName}
		if c.ContactPerson != "" {
			lines = append(lines, c.ContactPerson)
		}
		lines = append(lines, c.Address.StreetLine1)
		if c.Address.StreetLine2 != "" {
			lines = append(lines, c.Address.StreetLine2)
		}
		lines = append(lines,
			fmt.Sprintf("%s %s", c.Address.PostalCode, c.Address.City),
			c.Address.Country,
			fmt.Sprintf("%s %s", l.labels.OrgNumber, c.OrganisationNumber),
			fmt.Sprintf("%s %s", l.labels.VATNumber, c.VATNumber),
		)
		for _, line := range lines {
			l.pdf.CellFormat(0, 5, l.tr(line), "", 1, "L", false, 0, "")
		}
		l.pdf.Ln(3)
	}
	drawCompany(l.labels.Vendor, l.invoice.Vendor)
	drawCompany(l.labels.Client, l.invoice.Client)
}

func (l *invoiceLayout) drawLineItems() error {
	widths := []float64{84, 24, 32, 34}
	headers := []string{l.labels.Description, l.labels.Quantity, l.labels.UnitPrice, l.labels.Amount}

	l.pdf.SetFont(l.font, "B", 10)
	if l.layout == LayoutAioo {
		l.pdf.SetFillColor(l.accent[0], l.accent[1], l.accent[2])
		l.pdf.SetTextColor(255, 255, 255)
	}
	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		l.pdf.CellFormat(widths[i], 8, l.tr(header), "1", 0, align, l.layout == LayoutAioo, 0, "")
	}
	l.pdf.Ln(-1)
	l.pdf.SetTextColor(0, 0, 0)
	l.pdf.SetFont(l.font, "", 10)

	currency := string(l.invoice.Payment.Currency)
	for _, item := range l.invoice.LineItems.Items {
		quantity, err := item.Quantity.Float64()
		if err != nil {
			return err
		}
		unitPrice, err := item.UnitPrice.Float64()
		if err != nil {
			return err
		}
		total, err := item.TotalCost.Float64()
		if err != nil {
			return err
		}
		description := item.Name
		if l.invoice.LineItems.IsExpenses {
			description = fmt.Sprintf("%s (%s)", item.Name, item.TransactionDate)
		}
		l.pdf.CellFormat(widths[0], 7, l.tr(description), "1", 0, "L", false, 0, "")
		l.pdf.CellFormat(widths[1], 7, formatQuantity(quantity), "1", 0, "R", false, 0, "")
		l.pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f %s", unitPrice, currency), "1", 0, "R", false, 0, "")
		l.pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f %s", total, currency), "1", 0, "R", false, 0, "")
		l.pdf.Ln(-1)
	}
	return nil
}

func (l *invoiceLayout) drawTotals() error {
	total, err := l.invoice.LineItems.Total().Float64()
	if err != nil {
		return err
	}
	l.pdf.Ln(2)
	l.pdf.SetFont(l.font, "B", 12)
	if l.layout == LayoutAioo {
		l.pdf.SetTextColor(l.accent[0], l.accent[1], l.accent[2])
	}
	l.pdf.CellFormat(140, 8, l.tr(l.labels.ToPay), "", 0, "R", false, 0, "")
	l.pdf.CellFormat(34, 8, fmt.Sprintf("%.2f %s", total, l.invoice.Payment.Currency), "", 1, "R", false, 0, "")
	l.pdf.SetTextColor(0, 0, 0)
	return nil
}

func (l *invoiceLayout) drawPaymentInfo() {
	p := l.invoice.Payment
	l.pdf.Ln(4)
	l.pdf.SetFont(l.font, "B", 10)
	l.pdf.CellFormat(0, 6, l.tr(l.labels.PaymentInfo), "", 1, "L", false, 0, "")
	l.pdf.SetFont(l.font, "", 10)
	l.keyValue("IBAN", p.IBAN)
	l.keyValue("BIC", p.BIC)
	l.keyValue(l.labels.Bank, p.BankName)
}

func (l *invoiceLayout) drawFooter() {
	footer := l.invoice.Info.FooterText
	if footer == "" {
		return
	}
	l.pdf.Ln(6)
	l.pdf.SetFont(l.font, "I", 8)
	l.pdf.SetTextColor(110, 110, 110)
	l.pdf.MultiCell(0, 4, l.tr(footer), "", "L", false)
	l.pdf.SetTextColor(0, 0, 0)
}

func (l *invoiceLayout) keyValue(key, value string) {
	l.pdf.CellFormat(40, 5, l.tr(key), "", 0, "L", false, 0, "")
	l.pdf.CellFormat(0, 5, l.tr(value), "", 1, "L", false, 0, "")
}

func formatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return strconv.FormatInt(int64(q), 10)
	}
	return strconv.FormatFloat(q, 'f', 2, 64)
}

// parseHexColor parses #RRGGBB into its components
func parseHexColor(s string) ([3]int, error) {
	raw := strings.TrimPrefix(s, "#")
	if len(raw) != 6 {
		return [3]int{}, fmt.Errorf("%w: bad color %q", ErrRender, s)
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(raw[2*i:2*i+2], 16, 8)
		if err != nil {
			return [3]int{}, fmt.Errorf("%w: bad color %q", ErrRender, s)
		}
		rgb[i] = int(v)
	}
	return rgb, nil
}
