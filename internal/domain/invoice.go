package domain

import (
	"fmt"
	"strings"
)

// DefaultEmphasizeColorHex is the accent color used when the dataset does
// not configure one.
const DefaultEmphasizeColorHex = "#E6007A"

// ProtoInvoiceInfo is the persisted numbering anchor plus invoice
// presentation defaults.
type ProtoInvoiceInfo struct {
	Offset            TimestampedInvoiceNumber `yaml:"offset"`
	PeriodsOff        PeriodsOff               `yaml:"periods_off"`
	PurchaseOrder     string                   `yaml:"purchase_order,omitempty"`
	FooterText        string                   `yaml:"footer_text,omitempty"`
	EmphasizeColorHex string                   `yaml:"emphasize_color_hex,omitempty"`
}

func (p ProtoInvoiceInfo) Validate() error {
	if p.PeriodsOff.Contains(p.Offset.Period) {
		return ErrPeriodsOffContainsOffset
	}
	return nil
}

// Data is the full persisted dataset an invoice is assembled from
type Data struct {
	InvoiceInfo ProtoInvoiceInfo
	Vendor      CompanyInformation
	Client      CompanyInformation
	Payment     PaymentInformation
	ServiceFees ServiceFees
	Expenses    ExpensedPeriods
}

// PeriodKind is the variant the dataset is parameterized by; every stored
// period must share it.
func (d Data) PeriodKind() PeriodKind {
	return d.InvoiceInfo.Offset.Period.Kind()
}

func (d Data) Validate() error {
	if err := d.InvoiceInfo.Validate(); err != nil {
		return err
	}
	if err := d.Vendor.Validate(); err != nil {
		return fmt.Errorf("vendor: %w", err)
	}
	if err := d.Client.Validate(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if err := d.Payment.Validate(); err != nil {
		return fmt.Errorf("payment: %w", err)
	}
	if err := d.ServiceFees.Validate(); err != nil {
		return err
	}
	kind := d.PeriodKind()
	for _, p := range d.InvoiceInfo.PeriodsOff.All() {
		if p.Kind() != kind {
			return fmt.Errorf("%w: period off %s in a %s dataset", ErrPeriodKindMismatch, p, kind)
		}
	}
	return nil
}

// InvoiceInfoFull is the fully resolved invoice header
type InvoiceInfoFull struct {
	Number            InvoiceNumber
	InvoiceDate       Date
	DueDate           Date
	PurchaseOrder     string
	FooterText        string
	EmphasizeColorHex string
}

// LineItemsFlat is the converted line item list handed to the renderer
type LineItemsFlat struct {
	IsExpenses bool
	Items      []ConvertedItem
}

// Total sums the precomputed per-item totals
func (l LineItemsFlat) Total() Amount {
	total := AmountFromInt(0)
	for _, item := range l.Items {
		total = total.Add(item.TotalCost)
	}
	return total
}

// PreparedInvoice is the fully resolved, target-currency invoice. It is
// the only boundary between the core and the renderer.
type PreparedInvoice struct {
	Info       InvoiceInfoFull
	Vendor     CompanyInformation
	Client     CompanyInformation
	Payment    PaymentInformation
	LineItems  LineItemsFlat
	OutputPath string
}

// DefaultFileName is the conventional PDF name:
// {invoice_date}_{vendor_underscored}[_expenses]_invoice_{number}.pdf
func DefaultFileName(invoiceDate Date, vendorName string, isExpenses bool, number InvoiceNumber) string {
	name := strings.ReplaceAll(strings.TrimSpace(vendorName), " ", "_")
	suffix := ""
	if isExpenses {
		suffix = "_expenses"
	}
	return fmt.Sprintf("%s_%s%s_invoice_%d.pdf", invoiceDate, name, suffix, number)
}
