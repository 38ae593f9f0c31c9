package main

import (
	"os"

	"github.com/caredocs/caredocs/cmd/caredocs/cmd"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "caredocs",
		Short:        "Operator tools for the CareDocs document service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())
	rootCmd.AddCommand(cmd.BlobCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
