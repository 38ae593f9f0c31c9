package cmd

import (
	"fmt"
	"os"

	"github.com/caredocs/caredocs/internal/validation"
	"github.com/spf13/cobra"
)

func BlobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blob",
		Short: "Move document artifacts in and out of storage",
	}

	cmd.AddCommand(blobImportCmd())
	cmd.AddCommand(blobExportCmd())
	return cmd
}

func blobImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.pdf>",
		Short: "Store a PDF in the database and print its locator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			err = validation.ValidatePDFContent(data)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			locator, err := a.Store.StoreBlob(cmd.Context(), data, "application/pdf")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), locator)
			return err
		},
	}
}

func blobExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <locator> <out-file>",
		Short: "Write the artifact behind a locator (blob or file) to disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			obj, err := a.Store.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			err = os.WriteFile(args[1], obj.Content, 0o600)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\t%s\n", args[1], len(obj.Content), obj.ContentType)
			return err
		},
	}
}
