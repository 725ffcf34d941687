package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/render"
	"github.com/klirr/klirr/internal/service"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice [services | services-off | expenses]",
	Short: "Generate a PDF invoice for a billing period",
	Long: `Generate a PDF invoice for a billing period.

The line items are either the configured service fee (optionally reduced
by time off) or the expenses recorded for the period. Without an argument,
a full-service invoice is issued.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := invoiceInputFromFlags(cmd, args)
		if err != nil {
			return err
		}
		path, err := appInstance.Invoices.IssueInvoice(context.Background(), input)
		if err != nil {
			return fmt.Errorf("failed to generate invoice: %w", err)
		}
		fmt.Println(path)
		return nil
	},
}

func invoiceInputFromFlags(cmd *cobra.Command, args []string) (service.InvoiceInput, error) {
	periodSpec, _ := cmd.Flags().GetString("period")
	period, err := domain.ParsePeriod(periodSpec, time.Now())
	if err != nil {
		return service.InvoiceInput{}, err
	}

	langFlag, _ := cmd.Flags().GetString("language")
	language, err := render.ParseLanguage(langFlag)
	if err != nil {
		return service.InvoiceInput{}, err
	}

	layoutFlag, _ := cmd.Flags().GetString("layout")
	layout, err := render.ParseLayout(layoutFlag)
	if err != nil {
		return service.InvoiceInput{}, err
	}

	items := service.ServiceItems()
	selector := "services"
	if len(args) == 1 {
		selector = args[0]
	}
	switch selector {
	case "services":
	case "expenses":
		items = service.ExpenseItems()
	case "services-off":
		timeOff, err := timeOffFromFlags(cmd)
		if err != nil {
			return service.InvoiceInput{}, err
		}
		items = service.ServiceItemsWithTimeOff(timeOff)
	default:
		return service.InvoiceInput{}, fmt.Errorf("unknown item selector %q (want services, services-off, or expenses)", selector)
	}

	out, _ := cmd.Flags().GetString("out")
	sendEmail, _ := cmd.Flags().GetBool("email")

	return service.InvoiceInput{
		Period:     period,
		Items:      items,
		OutputPath: out,
		Language:   language,
		Layout:     layout,
		SendEmail:  sendEmail,
	}, nil
}

func timeOffFromFlags(cmd *cobra.Command) (domain.TimeOff, error) {
	rawQuantity, _ := cmd.Flags().GetString("quantity")
	if rawQuantity == "" {
		return domain.TimeOff{}, fmt.Errorf("services-off requires --quantity")
	}
	quantity, err := domain.NewAmount(rawQuantity)
	if err != nil {
		return domain.TimeOff{}, err
	}
	unit, _ := cmd.Flags().GetString("unit")
	switch unit {
	case "days":
		return domain.TimeOffDays(quantity), nil
	case "hours":
		return domain.TimeOffHours(quantity), nil
	}
	return domain.TimeOff{}, fmt.Errorf("unknown time off unit %q (want days or hours)", unit)
}

func init() {
	invoiceCmd.Flags().String("period", "current", "Billing period (YYYY-MM[-first-half|-second-half], current, last)")
	invoiceCmd.Flags().String("language", "en", "Invoice language (en or sv)")
	invoiceCmd.Flags().String("layout", "Aioo", "PDF layout (Aioo or Test)")
	invoiceCmd.Flags().String("out", "", "Output path for the PDF, resolved against the working directory if relative (default: invoices dir)")
	invoiceCmd.Flags().Bool("email", false, "Email the invoice after rendering")
	invoiceCmd.Flags().String("quantity", "", "Time off to subtract (services-off only)")
	invoiceCmd.Flags().String("unit", "days", "Time off unit: days or hours (services-off only)")
}
