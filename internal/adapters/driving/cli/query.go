package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsight/internal/core/ports/driving"
)

var (
	queryDocID     string
	queryTopKText  int
	queryTopKImage int
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question about indexed documents",
	Long: `Retrieves the most relevant page text and page images, extracts
critical fields (policy, claim and invoice numbers, amounts, dates,
parties), cross-checks them and prints a confidence-scored answer.

The result is also saved as a JSON artifact under the data directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryDocID, "doc", "d", "", "restrict retrieval to one document ID")
	queryCmd.Flags().IntVar(&queryTopKText, "top-k-text", 0, "text chunks to retrieve (0 = configured default)")
	queryCmd.Flags().IntVar(&queryTopKImage, "top-k-image", 0, "page images to retrieve (0 = configured default)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := requirePipeline(); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	if err := loadIndices(ctx); err != nil {
		return fmt.Errorf("failed to load indices: %w", err)
	}

	result, err := pipelineService.Query(ctx, strings.Join(args, " "), driving.QueryOptions{
		DocumentID: queryDocID,
		TopKText:   queryTopKText,
		TopKImage:  queryTopKImage,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	renderResult(out, result, stylesFor(out))
	return nil
}
