package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the explicit configuration passed into the pipeline entry point.
// Nothing in the pipeline reads ambient process-wide state.
type Config struct {
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Dialogue   DialogueConfig   `yaml:"dialogue" mapstructure:"dialogue"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	TTS        TTSConfig        `yaml:"tts" mapstructure:"tts"`
	Publish    PublishConfig    `yaml:"publish" mapstructure:"publish"`
	OutputDir  string           `yaml:"output_dir" mapstructure:"output_dir"`
}

// LLMConfig configures the analysis collaborator.
type LLMConfig struct {
	// Provider name: "ollama" or "openai" (any OpenAI-compatible endpoint).
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	// Timeout bounds every single completion call, in seconds.
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// DialogueConfig shapes the generated script.
type DialogueConfig struct {
	// Topics is the requested discussion topic count (T). Clamped to the
	// number of claim/challenge pairs the analysis actually produced.
	Topics int `yaml:"topics" mapstructure:"topics"`
	// ExchangesPerTopic is the number of optimist/skeptic pairs per topic (E).
	ExchangesPerTopic int `yaml:"exchanges_per_topic" mapstructure:"exchanges_per_topic"`
	// MaxRetries is the per-turn regeneration budget before the verbatim
	// claim/challenge fallback is used.
	MaxRetries int    `yaml:"max_retries" mapstructure:"max_retries"`
	ShowName   string `yaml:"show_name" mapstructure:"show_name"`
}

// ValidationConfig holds the content validator thresholds. The exact numbers
// are tuning defaults, not invariants.
type ValidationConfig struct {
	MinTurnChars int `yaml:"min_turn_chars" mapstructure:"min_turn_chars"`
	MaxTurnChars int `yaml:"max_turn_chars" mapstructure:"max_turn_chars"`
	// GenericPhrases is the denylist of filler phrases that mark a turn as
	// generic when it carries no paper-specific term.
	GenericPhrases []string `yaml:"generic_phrases" mapstructure:"generic_phrases"`
}

// TTSConfig configures the speech synthesis collaborator.
type TTSConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"`
	VoiceOptimist  string  `yaml:"voice_optimist" mapstructure:"voice_optimist"`
	VoiceSkeptic   string  `yaml:"voice_skeptic" mapstructure:"voice_skeptic"`
	VoiceNarrator  string  `yaml:"voice_narrator" mapstructure:"voice_narrator"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// PublishConfig configures optional S3 publishing of finished episodes.
type PublishConfig struct {
	Bucket     string `yaml:"bucket" mapstructure:"bucket"`
	Region     string `yaml:"region" mapstructure:"region"`
	CDNBaseURL string `yaml:"cdn_base_url" mapstructure:"cdn_base_url"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "llama3.1:8b",
			BaseURL:     "http://localhost:11434",
			Timeout:     120,
			MaxTokens:   600,
			Temperature: 0.8,
		},
		Dialogue: DialogueConfig{
			Topics:            3,
			ExchangesPerTopic: 2,
			MaxRetries:        2,
			ShowName:          "Research Rundown",
		},
		Validation: ValidationConfig{
			MinTurnChars:   40,
			MaxTurnChars:   1200,
			GenericPhrases: DefaultGenericPhrases(),
		},
		TTS: TTSConfig{
			Provider:       "elevenlabs",
			RequestsPerSec: 2,
		},
		Publish: PublishConfig{
			Region: "us-east-1",
		},
		OutputDir: "narrator-output",
	}
}

// DefaultGenericPhrases is the seed denylist for the generic-content check.
func DefaultGenericPhrases() []string {
	return []string{
		"that's a great point",
		"that's fascinating",
		"this research is interesting",
		"the findings are promising",
		"more research is needed",
		"i couldn't agree more",
		"great question",
		"absolutely",
		"exactly",
		"as an ai",
		"in the field of research",
		"this study shows",
		"science is amazing",
	}
}

// Load builds the effective Config: defaults, then the config file (if any),
// then PAPERNARRATOR_* environment variables. Flag overrides are applied by
// the CLI afterwards.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".paper-narrator"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("PAPERNARRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("llm.provider", def.LLM.Provider)
	v.SetDefault("llm.model", def.LLM.Model)
	v.SetDefault("llm.base_url", def.LLM.BaseURL)
	v.SetDefault("llm.timeout", def.LLM.Timeout)
	v.SetDefault("llm.max_tokens", def.LLM.MaxTokens)
	v.SetDefault("llm.temperature", def.LLM.Temperature)
	v.SetDefault("dialogue.topics", def.Dialogue.Topics)
	v.SetDefault("dialogue.exchanges_per_topic", def.Dialogue.ExchangesPerTopic)
	v.SetDefault("dialogue.max_retries", def.Dialogue.MaxRetries)
	v.SetDefault("dialogue.show_name", def.Dialogue.ShowName)
	v.SetDefault("validation.min_turn_chars", def.Validation.MinTurnChars)
	v.SetDefault("validation.max_turn_chars", def.Validation.MaxTurnChars)
	v.SetDefault("validation.generic_phrases", def.Validation.GenericPhrases)
	v.SetDefault("tts.provider", def.TTS.Provider)
	v.SetDefault("tts.requests_per_sec", def.TTS.RequestsPerSec)
	v.SetDefault("publish.region", def.Publish.Region)
	v.SetDefault("output_dir", def.OutputDir)
}

// WriteDefault writes a documented default config file to path. Fails if the
// file already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	header := "# paper-narrator configuration\n# Environment overrides use the PAPERNARRATOR_ prefix, e.g. PAPERNARRATOR_LLM_MODEL.\n"
	return os.WriteFile(path, []byte(header+string(data)), 0644)
}
