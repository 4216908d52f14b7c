package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mdindoost/paper-narrator/internal/assembly"
	"github.com/mdindoost/paper-narrator/internal/config"
	"github.com/mdindoost/paper-narrator/internal/observability"
	"github.com/mdindoost/paper-narrator/internal/pipeline"
	"github.com/mdindoost/paper-narrator/internal/progress"
	"github.com/mdindoost/paper-narrator/internal/tts"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "paper-narrator",
	Short: "Turn research papers into narrated optimist-vs-skeptic debate videos",
	Long: `paper-narrator reads a research paper (PDF, URL, or text file), has a
local LLM analyze it, and stages a debate between an optimistic and a
skeptical researcher, narrated and rendered as audio or video.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paper-narrator %s\n", Version)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [paper]",
	Short: "Generate a debate episode from a research paper",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

var listVoicesCmd = &cobra.Command{
	Use:   "list-voices",
	Short: "List available voices per TTS provider",
	RunE:  runListVoices,
}

var (
	flagOutput        string
	flagTopics        int
	flagExchanges     int
	flagAudioOnly     bool
	flagNoBranding    bool
	flagScriptOnly    bool
	flagFromScript    string
	flagPublish       bool
	flagVerbose       bool
	flagModel         string
	flagLLMProvider   string
	flagLLMURL        string
	flagTTS           string
	flagVoiceOptimist string
	flagVoiceSkeptic  string
	flagVoiceNarrator string
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listVoicesCmd)
	rootCmd.AddCommand(configCmd)

	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path (MP4, or MP3 with --audio-only)")
	generateCmd.Flags().IntVarP(&flagTopics, "topics", "t", 0, "Discussion topics to cover (default from config)")
	generateCmd.Flags().IntVarP(&flagExchanges, "exchanges", "e", 0, "Optimist/skeptic exchange pairs per topic (default from config)")
	generateCmd.Flags().BoolVar(&flagAudioOnly, "audio-only", false, "Produce an MP3 instead of a video")
	generateCmd.Flags().BoolVar(&flagNoBranding, "no-branding", false, "Skip the title and end cards in video output")
	generateCmd.Flags().BoolVarP(&flagScriptOnly, "script-only", "S", false, "Output script JSON only, skip TTS and assembly")
	generateCmd.Flags().StringVarP(&flagFromScript, "from-script", "f", "", "Render audio/video from an existing script JSON file")
	generateCmd.Flags().BoolVar(&flagPublish, "publish", false, "Upload the finished episode to the configured S3 bucket")
	generateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	generateCmd.Flags().StringVarP(&flagModel, "model", "m", "", "LLM model name (e.g. llama3.1:8b)")
	generateCmd.Flags().StringVar(&flagLLMProvider, "llm-provider", "", "LLM provider: ollama or openai")
	generateCmd.Flags().StringVar(&flagLLMURL, "llm-url", "", "LLM endpoint base URL")
	generateCmd.Flags().StringVarP(&flagTTS, "tts", "T", "", "TTS provider: elevenlabs or google")
	generateCmd.Flags().StringVar(&flagVoiceOptimist, "voice-optimist", "", "Voice ID for the optimist")
	generateCmd.Flags().StringVar(&flagVoiceSkeptic, "voice-skeptic", "", "Voice ID for the skeptic")
	generateCmd.Flags().StringVar(&flagVoiceNarrator, "voice-narrator", "", "Voice ID for the narrator")

	listVoicesCmd.Flags().StringVarP(&flagTTS, "tts", "T", "", "Limit to one provider: elevenlabs or google")
}

func Execute() error {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}

	if flagFromScript == "" && input == "" {
		return fmt.Errorf("either a paper argument or --from-script (-f) is required")
	}
	if flagFromScript != "" && input != "" {
		return fmt.Errorf("paper argument and --from-script are mutually exclusive")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &cfg)

	if err := validateConfig(cfg); err != nil {
		return err
	}

	if flagPublish && cfg.Publish.Bucket == "" {
		return fmt.Errorf("--publish requires publish.bucket in the config (or PAPERNARRATOR_PUBLISH_BUCKET)")
	}
	if !flagScriptOnly {
		if err := checkAPIKeys(cfg.TTS.Provider); err != nil {
			return err
		}
		if err := assembly.CheckFFmpeg(); err != nil {
			return err
		}
	}

	logger := observability.InitLogger(flagVerbose)

	ctx := context.Background()
	if tp, err := observability.InitTracer(ctx, "paper-narrator", Version); err == nil {
		defer tp.Shutdown(ctx)
	}

	renderer := progress.NewBarRenderer(os.Stdout)
	defer renderer.Finish()

	return pipeline.Run(ctx, cfg, pipeline.Options{
		Input:      input,
		Output:     flagOutput,
		AudioOnly:  flagAudioOnly,
		NoBranding: flagNoBranding,
		ScriptOnly: flagScriptOnly,
		FromScript: flagFromScript,
		Publish:    flagPublish,
		Verbose:    flagVerbose,
	}, logger, renderer.Handle)
}

// applyFlagOverrides layers explicitly-set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if flagModel != "" {
		cfg.LLM.Model = flagModel
	}
	if flagLLMProvider != "" {
		cfg.LLM.Provider = flagLLMProvider
	}
	if flagLLMURL != "" {
		cfg.LLM.BaseURL = flagLLMURL
	}
	if cmd.Flags().Changed("topics") {
		cfg.Dialogue.Topics = flagTopics
	}
	if cmd.Flags().Changed("exchanges") {
		cfg.Dialogue.ExchangesPerTopic = flagExchanges
	}
	if flagTTS != "" {
		cfg.TTS.Provider = flagTTS
	}
	if flagVoiceOptimist != "" {
		cfg.TTS.VoiceOptimist = flagVoiceOptimist
	}
	if flagVoiceSkeptic != "" {
		cfg.TTS.VoiceSkeptic = flagVoiceSkeptic
	}
	if flagVoiceNarrator != "" {
		cfg.TTS.VoiceNarrator = flagVoiceNarrator
	}
}

func validateConfig(cfg config.Config) error {
	validLLM := map[string]bool{"": true, "ollama": true, "openai": true}
	if !validLLM[cfg.LLM.Provider] {
		return fmt.Errorf("invalid LLM provider %q: must be ollama or openai", cfg.LLM.Provider)
	}

	validTTS := map[string]bool{"elevenlabs": true, "google": true}
	if !validTTS[cfg.TTS.Provider] {
		return fmt.Errorf("invalid TTS provider %q: must be elevenlabs or google", cfg.TTS.Provider)
	}

	if cfg.Dialogue.Topics < 1 || cfg.Dialogue.Topics > 10 {
		return fmt.Errorf("invalid topics count %d: must be between 1 and 10", cfg.Dialogue.Topics)
	}
	if cfg.Dialogue.ExchangesPerTopic < 1 || cfg.Dialogue.ExchangesPerTopic > 5 {
		return fmt.Errorf("invalid exchanges count %d: must be between 1 and 5", cfg.Dialogue.ExchangesPerTopic)
	}
	if cfg.Validation.MinTurnChars >= cfg.Validation.MaxTurnChars {
		return fmt.Errorf("validation.min_turn_chars (%d) must be below validation.max_turn_chars (%d)",
			cfg.Validation.MinTurnChars, cfg.Validation.MaxTurnChars)
	}
	return nil
}

func checkAPIKeys(ttsProvider string) error {
	switch ttsProvider {
	case "elevenlabs":
		if os.Getenv("ELEVENLABS_API_KEY") == "" {
			return fmt.Errorf("ELEVENLABS_API_KEY is not set (get one at https://elevenlabs.io)")
		}
	case "google":
		// Google TTS uses Application Default Credentials, validated lazily.
	}
	return nil
}

func runListVoices(cmd *cobra.Command, args []string) error {
	providers := []string{"elevenlabs", "google"}
	if flagTTS != "" {
		providers = []string{flagTTS}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range providers {
		voices, err := tts.AvailableVoices(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s:\n", name)
		for _, v := range voices {
			role := v.DefaultFor
			if role != "" {
				role = "default " + role
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", v.ID, v.Name, v.Description, role)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
