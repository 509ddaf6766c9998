package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify <doc-id>",
	Short: "Classify a processed document",
	Long: `Scores the document against the document type catalog (claim form,
inspection report, invoice, policy document, cover letter) with keyword,
semantic and pattern signals, and prints a report with probability bars
and suggested queries for the detected type.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output the classification as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if err := requirePipeline(); err != nil {
		return err
	}

	result, err := pipelineService.ClassifyDocument(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if classifyJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal classification: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	renderClassification(out, result, stylesFor(out))
	return nil
}
