package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klirr/klirr/internal/service"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Render a sample invoice PDF to your home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path, err := service.RenderSample(appInstance.Renderer, home)
		if err != nil {
			return fmt.Errorf("failed to render sample: %w", err)
		}
		fmt.Println(path)
		return nil
	},
}
