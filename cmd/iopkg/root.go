package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "iopkg",
		Short: "Inspect cooked game asset packages",
		Long: `iopkg decodes cooked asset packages in the legacy and zen layouts and prints
their name, import and export tables.

Examples:
  iopkg inspect Level.uasset --engine 4.27
  iopkg inspect Level.uasset --global global.bin --container container.bin --load`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.AddCommand(newInspectCmd())

	return root
}
