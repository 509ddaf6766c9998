package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var processClassify bool

var processCmd = &cobra.Command{
	Use:   "process <pdf>...",
	Short: "Render, OCR and index PDF documents",
	Long: `Renders every page of each PDF, runs OCR on it, and adds the pages to the
text and image indices. The document ID printed for each file is used by
'docsight classify' and 'docsight query --doc'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processClassify, "classify", false, "classify each document after indexing")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if err := requirePipeline(); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	if err := loadIndices(ctx); err != nil {
		return fmt.Errorf("failed to load indices: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, path := range args {
		meta, err := pipelineService.ProcessDocument(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", path, err)
		}
		cmd.Printf("Processed %s: %d pages, document ID %s\n", meta.Filename, meta.PageCount, meta.ID)

		if !processClassify {
			continue
		}
		result, err := pipelineService.ClassifyDocument(ctx, meta.ID)
		if err != nil {
			return fmt.Errorf("failed to classify %s: %w", path, err)
		}
		cmd.Println()
		renderClassification(out, result, stylesFor(out))
		cmd.Println()
	}
	return nil
}
