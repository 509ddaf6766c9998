package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOut   string
	exportDocID string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved query results to a spreadsheet",
	Long: `Writes every saved query result as one row of an .xlsx workbook, with
one column per extracted field, the evidence pages, the consistency
check and the confidence score.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "docsight-results.xlsx", "output file")
	exportCmd.Flags().StringVarP(&exportDocID, "doc", "d", "", "only results for this document ID")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) (err error) {
	if err := requireDocuments(); err != nil {
		return err
	}
	if exportOut == "" {
		return errors.New("--out is required")
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(exportOut)
		}
	}()

	n, err := documentService.Export(commandContext(cmd), exportDocID, f)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	cmd.Printf("Exported %d results to %s\n", n, exportOut)
	return nil
}
