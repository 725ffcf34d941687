package service

import (
	"os"
	"path/filepath"
	"time"

	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/render"
)

// SampleData is a complete fictional dataset, used to seed `data init`
// and to render the sample PDF.
func SampleData() domain.Data {
	price, _ := domain.NewAmount("1000")
	offsetPeriod, _ := domain.ParsePeriod("2025-01", time.Time{})
	return domain.Data{
		InvoiceInfo: domain.ProtoInvoiceInfo{
			Offset: domain.TimestampedInvoiceNumber{
				Number: 100,
				Period: offsetPeriod,
			},
			FooterText:        "Reverse charge",
			EmphasizeColorHex: domain.DefaultEmphasizeColorHex,
		},
		Vendor: domain.CompanyInformation{
			ContactPerson:      "Jane Doe",
			OrganisationNumber: "559999-9999",
			CompanyName:        "Acme Consulting AB",
			Address: domain.PostalAddress{
				StreetLine1: "Storgatan 1",
				PostalCode:  "111 22",
				City:        "Stockholm",
				Country:     "Sweden",
			},
			VATNumber: "SE559999999901",
		},
		Client: domain.CompanyInformation{
			OrganisationNumber: "HRB 12345",
			CompanyName:        "Globex GmbH",
			Address: domain.PostalAddress{
				StreetLine1: "Hauptstrasse 9",
				PostalCode:  "10115",
				City:        "Berlin",
				Country:     "Germany",
			},
			VATNumber: "DE123456789",
		},
		Payment: domain.PaymentInformation{
			IBAN:     "SE35 5000 0000 0549 1000 0003",
			BankName: "SEB",
			BIC:      "ESSESESS",
			Currency: domain.EUR,
			Terms:    domain.PaymentTerms{Net: 30},
		},
		ServiceFees: domain.ServiceFees{
			Name:    "Software development",
			Rate:    domain.DailyRate(price),
			Cadence: domain.CadenceMonthly,
		},
	}
}

// RenderSample renders the sample dataset to the given directory and
// returns the PDF path. No stored data is read or written.
func RenderSample(renderer render.InvoiceRenderer, dir string) (string, error) {
	data := SampleData()
	svc := &invoiceService{invoicesDir: dir}

	period, _ := domain.ParsePeriod("2025-01", time.Time{})
	partial, err := svc.ToPartial(data, InvoiceInput{
		Period:   period,
		Items:    ServiceItems(),
		Language: render.LanguageEnglish,
		Layout:   render.LayoutAioo,
	})
	if err != nil {
		return "", err
	}

	// service fee is already in the target currency, no oracle needed
	rates := domain.ExchangeRates{Target: data.Payment.Currency}
	prepared, err := svc.ToPrepared(partial, rates)
	if err != nil {
		return "", err
	}

	pdf, err := renderer.Render(render.LanguageEnglish, prepared, render.LayoutAioo)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(prepared.OutputPath))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
