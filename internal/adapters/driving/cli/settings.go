package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

//nolint:gosec // G101: config key name, not a credential.
const apiKeySetting = "embeddings.api_key"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure encoders, chunking, retrieval, classifier weights,
extraction calibration and preprocessing options.

Settings are stored in ~/.docsight/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a setting",
	Long: `Set one setting by its dotted key, e.g.

  docsight settings set models.text_encoder ollama
  docsight settings set embeddings.chunk_size 120

Run 'docsight settings keys' for the full list. When setting
embeddings.api_key without a value, the key is read from the terminal
without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the configured encoders",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settings keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Models]")
	cmd.Printf("  Text encoder:  %s\n", s.Models.TextEncoder.Description())
	cmd.Printf("  Image encoder: %s\n", s.Models.ImageEncoder.Description())
	cmd.Printf("  OCR engine:    %s (%s)\n", s.Models.OCREngine, s.Preprocess.Language)
	cmd.Println()

	cmd.Println("[Embeddings]")
	if s.Embedding.TextModel != "" {
		cmd.Printf("  Text model:     %s\n", s.Embedding.TextModel)
	}
	if s.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL:       %s\n", s.Embedding.BaseURL)
	}
	if s.Models.TextEncoder.RequiresAPIKey() {
		if s.Embedding.APIKey != "" {
			cmd.Printf("  API key:        %s\n", maskAPIKey(s.Embedding.APIKey))
		} else {
			cmd.Println("  API key:        (not set)")
		}
	}
	if s.Models.ImageEncoder == domain.ImageEncoderCLIP {
		cmd.Printf("  CLIP server:    %s\n", orDefault(s.Embedding.ImageBaseURL, "(default)"))
	}
	cmd.Printf("  Dimensions:     text %d, image %d\n", s.Embedding.TextDim, s.Embedding.ImageDim)
	cmd.Printf("  Chunking:       %d tokens, %d overlap\n", s.Embedding.ChunkSize, s.Embedding.ChunkOverlap)
	cmd.Printf("  Fusion weights: text %.2f, image %.2f\n", s.Embedding.Alpha, s.Embedding.Beta)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top-k: text %d, image %d\n", s.Retrieval.TopKText, s.Retrieval.TopKImage)
	cmd.Println()

	cmd.Println("[Classifier]")
	cmd.Printf("  Weights: keyword %.2f, semantic %.2f, pattern %.2f\n",
		s.Classifier.KeywordWeight, s.Classifier.SemanticWeight, s.Classifier.PatternWeight)
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Evidence threshold: %.2f\n", s.Extraction.EvidenceThreshold)
	cmd.Printf("  Confidence:         base %.2f, decay %.2f, floor %.2f, max %.2f\n",
		s.Extraction.BaseConfidence, s.Extraction.Decay, s.Extraction.Floor, s.Extraction.MaxConfidence)
	cmd.Println()

	cmd.Println("[Preprocess]")
	cmd.Printf("  DPI: %d, workers: %d\n", s.Preprocess.DPI, s.Preprocess.Workers)
	cmd.Printf("  Data dir: %s\n", orDefault(s.Paths.DataDir, "~/.docsight/data"))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Status: invalid\n  %s\n", strings.ReplaceAll(err.Error(), "\n", "\n  "))
	} else {
		cmd.Println("Status: valid")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case key == apiKeySetting:
		v, err := readSecret(cmd, "API key: ")
		if err != nil {
			return err
		}
		value = v
	default:
		return fmt.Errorf("missing value for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if key == apiKeySetting {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, shown)

	if err := settingsService.Validate(); err != nil {
		cmd.PrintErrf("Warning: settings are not valid yet: %v\n", err)
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	if err := settingsService.Check(commandContext(cmd)); err != nil {
		return fmt.Errorf("settings check failed: %w", err)
	}
	cmd.Println("Settings valid, encoders reachable.")
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
