package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mdindoost/paper-narrator/internal/analysis"
	"github.com/mdindoost/paper-narrator/internal/assembly"
	"github.com/mdindoost/paper-narrator/internal/config"
	"github.com/mdindoost/paper-narrator/internal/ingest"
	"github.com/mdindoost/paper-narrator/internal/llm"
	"github.com/mdindoost/paper-narrator/internal/persona"
	"github.com/mdindoost/paper-narrator/internal/progress"
	"github.com/mdindoost/paper-narrator/internal/publish"
	"github.com/mdindoost/paper-narrator/internal/script"
	"github.com/mdindoost/paper-narrator/internal/tts"
	"github.com/mdindoost/paper-narrator/internal/validate"
)

const minPaperWords = 100

// Options are the per-run knobs layered over the loaded Config by the CLI.
type Options struct {
	Input      string
	Output     string
	AudioOnly  bool
	NoBranding bool
	ScriptOnly bool
	FromScript string
	Publish    bool
	Verbose    bool
}

// PipelineError wraps a stage failure so callers can tell where a run died.
type PipelineError struct {
	Stage   string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full paper-to-episode pipeline: ingest, analyze, script,
// synthesize, assemble, optionally publish. Progress events are delivered to
// onProgress; pass progress.NopCallback to run silently.
func Run(ctx context.Context, cfg config.Config, opts Options, logger *slog.Logger, onProgress progress.Callback) error {
	start := time.Now()

	if logger == nil {
		logger = slog.Default()
	}
	if onProgress == nil {
		onProgress = progress.NopCallback
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer := otel.Tracer("paper-narrator/pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	var s *script.DialogueScript

	if opts.FromScript != "" {
		onProgress(progress.NewEvent(progress.StageScript, "Loading script from "+opts.FromScript, 0.2, start))
		loaded, err := script.LoadScript(opts.FromScript)
		if err != nil {
			return &PipelineError{Stage: "script", Message: "failed to load script", Err: err}
		}
		s = loaded
		logger.InfoContext(ctx, "script loaded", "path", opts.FromScript, "turns", len(s.Turns))
	} else {
		built, err := buildScript(ctx, tracer, cfg, opts, logger, onProgress, start)
		if err != nil {
			return err
		}
		s = built
	}

	if opts.ScriptOnly {
		out := opts.Output
		if out == "" {
			out = filepath.Join(cfg.OutputDir, s.ID+".script.json")
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return &PipelineError{Stage: "script", Message: "failed to create output directory", Err: err}
		}
		if err := script.SaveScript(s, out); err != nil {
			return &PipelineError{Stage: "script", Message: "failed to save script", Err: err}
		}
		onProgress(progress.Event{
			Stage:   progress.StageComplete,
			Message: fmt.Sprintf("Script saved to %s (%d turns, ~%d min)", out, len(s.Turns), s.EstimateMinutes()),
		})
		return nil
	}

	output := opts.Output
	if output == "" {
		ext := ".mp4"
		if opts.AudioOnly {
			ext = ".mp3"
		}
		output = filepath.Join(cfg.OutputDir, s.ID+ext)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return &PipelineError{Stage: "assembly", Message: "failed to create output directory", Err: err}
	}

	tmpDir, err := os.MkdirTemp("", "paper-narrator-*")
	if err != nil {
		return &PipelineError{Stage: "tts", Message: "failed to create temp directory", Err: err}
	}
	defer os.RemoveAll(tmpDir)

	segments, err := synthesize(ctx, tracer, cfg, s, logger, onProgress, start, tmpDir)
	if err != nil {
		return err
	}

	if err := assemble(ctx, tracer, cfg, opts, s, segments, tmpDir, output, onProgress, start); err != nil {
		return err
	}

	completeEvent := progress.Event{
		Stage:      progress.StageComplete,
		Message:    "Episode complete",
		OutputFile: output,
	}
	if info, err := os.Stat(output); err == nil {
		completeEvent.SizeMB = float64(info.Size()) / (1024 * 1024)
	}
	if secs, err := assembly.ProbeDuration(ctx, output); err == nil {
		completeEvent.Duration = fmt.Sprintf("%d:%02d", int(secs)/60, int(secs)%60)
	}

	if opts.Publish {
		onProgress(progress.NewEvent(progress.StagePublish, "Uploading episode", 0.95, start))
		url, err := publishEpisode(ctx, cfg, output)
		if err != nil {
			return &PipelineError{Stage: "publish", Message: "failed to upload episode", Err: err}
		}
		completeEvent.PublishedURL = url
		logger.InfoContext(ctx, "episode published", "url", url)
	}

	onProgress(completeEvent)
	logger.InfoContext(ctx, "pipeline complete",
		"output", output, "turns", len(s.Turns),
		"fallback_turns", s.FallbackCount(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// buildScript runs ingest, analysis, and dialogue generation.
func buildScript(ctx context.Context, tracer trace.Tracer, cfg config.Config, opts Options, logger *slog.Logger, onProgress progress.Callback, start time.Time) (*script.DialogueScript, error) {
	ctx, span := tracer.Start(ctx, "pipeline.build_script")
	defer span.End()

	onProgress(progress.NewEvent(progress.StageIngest, "Reading paper", 0.05, start))
	ingester := ingest.NewIngester(opts.Input)
	paper, err := ingester.Ingest(ctx, opts.Input)
	if err != nil {
		return nil, &PipelineError{Stage: "ingest", Message: "failed to extract paper text", Err: err}
	}
	span.SetAttributes(
		attribute.String("paper.source", paper.Source),
		attribute.Int("paper.words", paper.WordCount),
	)
	logger.InfoContext(ctx, "paper ingested",
		"source", paper.Source, "title", paper.Title, "words", paper.WordCount)

	if paper.WordCount < minPaperWords {
		return nil, &PipelineError{
			Stage: "ingest",
			Message: fmt.Sprintf("paper too short (%d words), need at least %d for a meaningful debate",
				paper.WordCount, minPaperWords),
		}
	}

	provider, err := llm.NewProvider(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Timeout:     time.Duration(cfg.LLM.Timeout) * time.Second,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, &PipelineError{Stage: "analyze", Message: "failed to create LLM provider", Err: err}
	}
	if !provider.IsAvailable(ctx) {
		return nil, &PipelineError{
			Stage: "analyze",
			Message: fmt.Sprintf("LLM provider %q at %s is not reachable, is it running?",
				provider.Name(), cfg.LLM.BaseURL),
		}
	}

	onProgress(progress.NewEvent(progress.StageAnalyze, "Analyzing paper with "+cfg.LLM.Model, 0.15, start))
	analyzer := analysis.NewAnalyzer(provider, logger)
	a, err := analyzer.Analyze(ctx, paper.Text)
	if err != nil {
		return nil, &PipelineError{Stage: "analyze", Message: "failed to analyze paper", Err: err}
	}
	logger.InfoContext(ctx, "paper analyzed",
		"topic", a.Topic, "claims", len(a.OptimistClaims),
		"challenges", len(a.SkepticChallenges), "key_terms", len(a.KeyTerms))

	onProgress(progress.NewEvent(progress.StageScript, "Generating debate script", 0.3, start))
	registry := persona.NewRegistry()
	validator := validate.New(cfg.Validation.MinTurnChars, cfg.Validation.MaxTurnChars,
		cfg.Validation.GenericPhrases, registry)
	builder := script.NewBuilder(provider, registry, validator, script.BuilderConfig{
		Topics:            cfg.Dialogue.Topics,
		ExchangesPerTopic: cfg.Dialogue.ExchangesPerTopic,
		MaxRetries:        cfg.Dialogue.MaxRetries,
		ShowName:          cfg.Dialogue.ShowName,
	}, logger)

	s, err := builder.Build(ctx, a)
	if err != nil {
		return nil, &PipelineError{Stage: "script", Message: "failed to build dialogue", Err: err}
	}
	logger.InfoContext(ctx, "script built",
		"id", s.ID, "turns", len(s.Turns), "exchanges", s.ExchangeCount,
		"fallback_turns", s.FallbackCount(), "est_minutes", s.EstimateMinutes())
	return s, nil
}

func synthesize(ctx context.Context, tracer trace.Tracer, cfg config.Config, s *script.DialogueScript, logger *slog.Logger, onProgress progress.Callback, start time.Time, tmpDir string) ([]tts.Segment, error) {
	ctx, span := tracer.Start(ctx, "pipeline.synthesize")
	defer span.End()

	provider, err := tts.NewProvider(cfg.TTS.Provider,
		cfg.TTS.VoiceOptimist, cfg.TTS.VoiceSkeptic, cfg.TTS.VoiceNarrator)
	if err != nil {
		return nil, &PipelineError{Stage: "tts", Message: "failed to create TTS provider", Err: err}
	}
	defer provider.Close()

	onProgress(progress.NewEvent(progress.StageTTS, "Synthesizing speech", 0.4, start))
	synth := tts.NewSynthesizer(provider, provider.DefaultVoices(), cfg.TTS.RequestsPerSec, logger)
	segments, err := synth.SynthesizeScript(ctx, s.Turns, tmpDir, func(done, total int) {
		e := progress.NewEvent(progress.StageTTS,
			fmt.Sprintf("Synthesizing speech (%d/%d turns)", done, total),
			0.4+0.4*float64(done)/float64(total), start)
		e.SegmentNum = done
		e.SegmentTotal = total
		onProgress(e)
	})
	if err != nil {
		return nil, &PipelineError{Stage: "tts", Message: "failed to synthesize audio", Err: err}
	}
	span.SetAttributes(attribute.Int("tts.segments", len(segments)))
	return segments, nil
}

func assemble(ctx context.Context, tracer trace.Tracer, cfg config.Config, opts Options, s *script.DialogueScript, segments []tts.Segment, tmpDir, output string, onProgress progress.Callback, start time.Time) error {
	ctx, span := tracer.Start(ctx, "pipeline.assemble")
	defer span.End()

	onProgress(progress.NewEvent(progress.StageAssembly, "Assembling episode", 0.85, start))

	// Normalize any non-MP3 segments so the concat inputs share a codec.
	for i, seg := range segments {
		if seg.Format == tts.FormatMP3 {
			continue
		}
		converted := seg.Path + ".mp3"
		if err := assembly.ConvertToMP3(ctx, seg.Path, string(seg.Format), converted); err != nil {
			return &PipelineError{Stage: "assembly", Message: "failed to convert segment", Err: err}
		}
		segments[i].Path = converted
	}

	if opts.AudioOnly {
		paths := make([]string, len(segments))
		for i, seg := range segments {
			paths[i] = seg.Path
		}
		if err := assembly.NewAudioAssembler().Assemble(ctx, paths, tmpDir, output); err != nil {
			return &PipelineError{Stage: "assembly", Message: "failed to assemble audio", Err: err}
		}
		return nil
	}

	registry := persona.NewRegistry()
	videoSegs := make([]assembly.VideoSegment, len(segments))
	for i, seg := range segments {
		name := seg.Speaker
		if p, ok := registry.Get(seg.Speaker); ok {
			name = p.Name
		}
		videoSegs[i] = assembly.VideoSegment{
			AudioPath:   seg.Path,
			SpeakerID:   seg.Speaker,
			SpeakerName: name,
		}
	}

	assembler := assembly.NewVideoAssembler(cfg.Dialogue.ShowName, s.Title, !opts.NoBranding)
	if err := assembler.Assemble(ctx, videoSegs, tmpDir, output); err != nil {
		return &PipelineError{Stage: "assembly", Message: "failed to assemble video", Err: err}
	}
	return nil
}

func publishEpisode(ctx context.Context, cfg config.Config, output string) (string, error) {
	uploader, err := publish.NewUploader(ctx, cfg.Publish.Bucket, cfg.Publish.Region, cfg.Publish.CDNBaseURL)
	if err != nil {
		return "", err
	}
	return uploader.Upload(ctx, output)
}
