package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

var resultsDocID string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect processed documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show <doc-id>",
	Short: "Show a document's pages and classification",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect saved query results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved query results",
	Args:  cobra.NoArgs,
	RunE:  runResultsList,
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	rootCmd.AddCommand(docsCmd)

	resultsListCmd.Flags().StringVarP(&resultsDocID, "doc", "d", "", "only results for this document ID")
	resultsCmd.AddCommand(resultsListCmd)
	rootCmd.AddCommand(resultsCmd)
}

func requireDocuments() error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents processed yet. Run 'docsight process <pdf>'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tPAGES\tTYPE\tPROCESSED")
	for _, d := range docs {
		docType := d.DocumentType
		if docType == "" {
			docType = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", d.ID, d.Filename, d.PageCount, docType, d.ProcessedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	meta, err := documentService.Metadata(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	cmd.Printf("Document:  %s\n", meta.ID)
	cmd.Printf("File:      %s\n", meta.Filename)
	cmd.Printf("Pages:     %d\n", meta.PageCount)
	cmd.Printf("Processed: %s\n", meta.CreatedAt.Local().Format(time.DateTime))

	cls, err := documentService.Classification(ctx, meta.ID)
	switch {
	case err == nil:
		cmd.Printf("Type:      %s (%.1f%%)\n", cls.DocumentType, cls.ConfidenceScore*100)
	case errors.Is(err, domain.ErrNotFound):
		cmd.Println("Type:      not classified")
	default:
		return fmt.Errorf("failed to load classification: %w", err)
	}

	cmd.Println()
	for _, p := range meta.Pages {
		cmd.Printf("  [%d] %s (%d chars)\n", p.PageID, p.ImagePath, len(p.Text))
	}
	return nil
}

func runResultsList(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	results, err := documentService.Results(commandContext(cmd), resultsDocID)
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No results saved yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tDOCUMENT\tCONFIDENCE\tQUERY\tPATH")
	for _, r := range results {
		doc := r.DocumentID
		if doc == "" {
			doc = "(all)"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", r.CreatedAt.Local().Format(time.DateTime), doc, r.Confidence, r.Query, r.Path)
	}
	return w.Flush()
}
