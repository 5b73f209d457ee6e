package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/cuestrip/internal/subtitle"
	"github.com/mgpai22/cuestrip/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [srt_file]",
	Short: "Translate SRT subtitles to another language using AI",
	Long: `Translate the text of an SRT file with an LLM. Cue timing and order are
kept; only the text changes.

The --overlay flag creates bilingual subtitles with the translated text
first, followed by the original text on the next line.

Examples:
  cuestrip translate movie.srt --target-language japanese
  cuestrip translate movie.srt -t ja --overlay
  cuestrip translate movie.srt -l english -t spanish --provider anthropic -o movie.es.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Language of the input subtitles (optional)")
	translateCmd.Flags().
		StringP("output", "o", "", "Output file path (default <input>.<target>.srt)")
	translateCmd.Flags().
		Bool("overlay", false, "Overlay translated text with original (bilingual subtitles)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		Int("concurrency", translate.DefaultConcurrency, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of subtitle entries per API request")
	translateCmd.Flags().
		String("prompt", "", "Extra instructions for the model")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	outputPath, _ := cmd.Flags().GetString("output")
	overlay, _ := cmd.Flags().GetBool("overlay")
	apiKey, _ := cmd.Flags().GetString("api-key")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	prompt, _ := cmd.Flags().GetString("prompt")

	provider := translate.Provider(cfg.Translate.Provider)
	model := cfg.Translate.Model

	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}

	if !modelOverride {
		if err := translate.ValidateModel(provider, model); err != nil {
			return err
		}
	}

	if outputPath == "" {
		base := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		if overlay {
			outputPath = fmt.Sprintf("%s.%s.overlay.srt", base, targetLang)
		} else {
			outputPath = fmt.Sprintf("%s.%s.srt", base, targetLang)
		}
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"input_language", inputLang,
		"provider", provider,
		"model", model,
		"overlay", overlay,
	)

	parser := &subtitle.Parser{OnSkip: func(err *subtitle.BlockError) {
		logger.Warnw("Skipping malformed block", "line", err.Line, "reason", err.Err)
	}}
	subFile, err := subtitle.Open(subtitlePath, parser)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	logger.Infow("Parsed subtitle file", "entries", len(subFile.Entries))

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      cfg.Translate.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating subtitles",
		"items", len(subFile.Entries),
		"concurrency", cfg.Translate.Concurrency,
		"batch_size", cfg.Translate.BatchSize,
	)

	translated, err := translate.TranslateEntries(
		ctx,
		translator,
		subFile.Entries,
		cfg.Translate.Concurrency,
		overlay,
	)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	subFile.Entries = translated

	logger.Infow("Writing output file")
	if err := subFile.Write(outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Subtitles translated successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Entries: %d\n", len(subFile.Entries))
	fmt.Fprintf(out, "  Target language: %s\n", targetLang)
	if overlay {
		fmt.Fprintf(out, "  Mode: bilingual overlay\n")
	}

	return nil
}
