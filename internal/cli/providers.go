package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/ebert/internal/providers"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show provider availability",
	Run: func(cmd *cobra.Command, args []string) {
		registry := providers.NewRegistry()
		fmt.Fprintln(os.Stdout, "Provider status:")
		for _, s := range registry.Statuses() {
			mark := "[--]"
			if s.Available {
				mark = "[ok]"
			}
			fmt.Fprintf(os.Stdout, "  %s %s: %s\n", mark, s.Name, s.Reason)
		}
		if name, ok := registry.Detect(); ok {
			fmt.Fprintf(os.Stdout, "\nAuto-detect would select: %s\n", name)
		} else {
			fmt.Fprintln(os.Stdout, "\nNo provider is available.")
		}
	},
}
