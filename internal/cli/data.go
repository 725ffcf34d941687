package cli

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/storage"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Maintain the invoicing dataset",
}

var dataInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed the data directory with a sample dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.Data.Init(); err != nil {
			return fmt.Errorf("failed to init data: %w", err)
		}
		fmt.Printf("Dataset seeded under %s — edit it with `klirr data edit`\n", appInstance.Config.DataDir)
		return nil
	},
}

var dataValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and cross-check every dataset file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := appInstance.Data.Validate(); err != nil {
			return err
		}
		fmt.Println("Dataset is valid")
		return nil
	},
}

var dataDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the dataset as yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := appInstance.Data.Validate()
		if err != nil {
			return err
		}
		dump := map[string]any{
			"vendor":       data.Vendor,
			"client":       data.Client,
			"payment":      data.Payment,
			"service_fees": data.ServiceFees,
			"invoice_info": data.InvoiceInfo,
			"expenses":     data.Expenses,
		}
		encoded, err := yaml.Marshal(dump)
		if err != nil {
			return err
		}
		fmt.Print(string(encoded))
		return nil
	},
}

var dataEditCmd = &cobra.Command{
	Use:       "edit [selector]",
	Short:     "Open one dataset file in $EDITOR",
	Args:      cobra.ExactArgs(1),
	ValidArgs: dataSelectors(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := selectorToKey(args[0])
		if err != nil {
			return err
		}
		return openInEditor(appInstance.Store.Path(key))
	},
}

var dataPeriodOffCmd = &cobra.Command{
	Use:   "period-off",
	Short: "Record a period for which no invoice is issued",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, _ := cmd.Flags().GetString("period")
		period, err := domain.ParsePeriod(spec, time.Now())
		if err != nil {
			return err
		}
		if err := appInstance.Data.RecordPeriodOff(period); err != nil {
			return fmt.Errorf("failed to record period off: %w", err)
		}
		fmt.Printf("Recorded %s as off\n", period)
		return nil
	},
}

var dataExpensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Record expenses for a period",
	Long: `Record expenses for a period.

Each -e item is "name,unit_price,CURRENCY,quantity,YYYY-MM-DD". Items that
share name, date, unit price, and currency merge into one row with summed
quantity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, _ := cmd.Flags().GetString("period")
		period, err := domain.ParsePeriod(spec, time.Now())
		if err != nil {
			return err
		}
		rawItems, _ := cmd.Flags().GetStringArray("expense")
		if len(rawItems) == 0 {
			return fmt.Errorf("at least one -e expense item is required")
		}
		items := make([]domain.Item, 0, len(rawItems))
		for _, raw := range rawItems {
			item, err := domain.ParseItem(raw)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		if err := appInstance.Data.RecordExpenses(period, items); err != nil {
			return fmt.Errorf("failed to record expenses: %w", err)
		}
		fmt.Printf("Recorded %d expense item(s) for %s\n", len(items), period)
		return nil
	},
}

func dataSelectors() []string {
	return []string{"vendor", "client", "payment", "service_fees", "invoice_info", "expenses"}
}

func selectorToKey(selector string) (storage.Key, error) {
	for _, key := range storage.DataKeys {
		if string(key) == selector {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown selector %q (want one of %v)", selector, dataSelectors())
}

func openInEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func init() {
	dataCmd.AddCommand(dataInitCmd)
	dataCmd.AddCommand(dataValidateCmd)
	dataCmd.AddCommand(dataDumpCmd)
	dataCmd.AddCommand(dataEditCmd)
	dataCmd.AddCommand(dataPeriodOffCmd)
	dataCmd.AddCommand(dataExpensesCmd)

	dataPeriodOffCmd.Flags().String("period", "", "Period to mark as off")
	dataPeriodOffCmd.MarkFlagRequired("period")

	dataExpensesCmd.Flags().String("period", "current", "Period the expenses belong to")
	dataExpensesCmd.Flags().StringArrayP("expense", "e", nil, "Expense item spec (repeatable)")
}
