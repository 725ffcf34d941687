package cli

import (
	"github.com/spf13/cobra"

	"github.com/klirr/klirr/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "klirr",
	Short: "Deterministic invoicing for freelancers",
	Long: `Klirr maintains a small on-disk dataset (vendor, client, payment info,
service fees, expenses, periods off) and produces deterministic PDF
invoices for a billing period, optionally emailing them over SMTP.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(emailCmd)
}
