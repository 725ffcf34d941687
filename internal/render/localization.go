package render

import (
	"fmt"
	"strings"
)

// Language selects the label set printed on the PDF
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSwedish Language = "sv"
)

func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(s) {
	case "en":
		return LanguageEnglish, nil
	case "sv":
		return LanguageSwedish, nil
	}
	return "", fmt.Errorf("unsupported language %q (want en or sv)", s)
}

// labels is a localized string table for the invoice layout
type labels struct {
	Invoice       string
	ExpenseReport string
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	PurchaseOrder string
	VATNumber     string
	OrgNumber     string
	Description   string
	Quantity      string
	UnitPrice     string
	Amount        string
	Total         string
	PaymentInfo   string
	Bank          string
	ToPay         string
	For           string
	Client        string
	Vendor        string
}

var labelTables = map[Language]labels{
	LanguageEnglish: {
		Invoice:       "Invoice",
		ExpenseReport: "Expenses invoice",
		InvoiceNumber: "Invoice no.",
		InvoiceDate:   "Invoice date",
		DueDate:       "Due date",
		PurchaseOrder: "Purchase order",
		VATNumber:     "VAT no.",
		OrgNumber:     "Org. no.",
		Description:   "Description",
		Quantity:      "Quantity",
		UnitPrice:     "Unit price",
		Amount:        "Amount",
		Total:         "Total",
		PaymentInfo:   "Payment information",
		Bank:          "Bank",
		ToPay:         "To pay",
		For:           "For",
		Client:        "Client",
		Vendor:        "Vendor",
	},
	LanguageSwedish: {
		Invoice:       "Faktura",
		ExpenseReport: "Utläggsfaktura",
		InvoiceNumber: "Fakturanr",
		InvoiceDate:   "Fakturadatum",
		DueDate:       "Förfallodatum",
		PurchaseOrder: "Inköpsorder",
		VATNumber:     "Momsreg.nr",
		OrgNumber:     "Org.nr",
		Description:   "Beskrivning",
		Quantity:      "Antal",
		UnitPrice:     "À-pris",
		Amount:        "Belopp",
		Total:         "Totalt",
		PaymentInfo:   "Betalningsinformation",
		Bank:          "Bank",
		ToPay:         "Att betala",
		For:           "Avser",
		Client:        "Kund",
		Vendor:        "Leverantör",
	},
}

func labelsFor(lang Language) labels {
	if table, ok := labelTables[lang]; ok {
		return table
	}
	return labelTables[LanguageEnglish]
}
