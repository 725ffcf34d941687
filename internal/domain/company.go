package domain

import (
	"errors"
	"strings"
)

type PostalAddress struct {
	StreetLine1 string `yaml:"street_line_1"`
	StreetLine2 string `yaml:"street_line_2,omitempty"`
	PostalCode  string `yaml:"postal_code"`
	City        string `yaml:"city"`
	Country     string `yaml:"country"`
}

// CompanyInformation identifies the vendor or the client on the invoice
type CompanyInformation struct {
	ContactPerson      string        `yaml:"contact_person,omitempty"`
	OrganisationNumber string        `yaml:"organisation_number"`
	CompanyName        string        `yaml:"company_name"`
	Address            PostalAddress `yaml:"address"`
	VATNumber          string        `yaml:"vat_number"`
}

func (c CompanyInformation) Validate() error {
	if strings.TrimSpace(c.CompanyName) == "" {
		return errors.New("company name is required")
	}
	return nil
}

// PaymentTerms is currently always net-N-days; kept as a struct so future
// term shapes can be added without breaking the stored form.
type PaymentTerms struct {
	Net NetDays `yaml:"net"`
}

// DueDate applies the terms to an invoice date
func (t PaymentTerms) DueDate(invoiceDate Date) Date {
	return invoiceDate.Advance(t.Net)
}

// PaymentInformation is the bank detail block on the invoice. Currency is
// the target currency all line items are converted into.
type PaymentInformation struct {
	IBAN     string       `yaml:"iban"`
	BankName string       `yaml:"bank_name"`
	BIC      string       `yaml:"bic"`
	Currency Currency     `yaml:"currency"`
	Terms    PaymentTerms `yaml:"terms"`
}

func (p PaymentInformation) Validate() error {
	if strings.TrimSpace(p.IBAN) == "" {
		return errors.New("iban is required")
	}
	if _, err := ParseCurrency(string(p.Currency)); err != nil {
		return err
	}
	return nil
}
