package assembly

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mdindoost/paper-narrator/internal/persona"
)

// Video output constants. 720p keeps renders fast on laptop CPUs while
// staying presentable on video platforms.
const (
	VideoWidth      = "1280"
	VideoHeight     = "720"
	VideoCodec      = "libx264"
	VideoPixFmt     = "yuv420p"
	VideoPreset     = "medium"
	VideoAudioCodec = "aac"

	brandingCardSeconds = "3"
)

// Speaker card background colors (ffmpeg color names or hex).
var speakerColors = map[string]string{
	persona.Optimist: "0x1B6B5A",
	persona.Skeptic:  "0x6B2737",
	persona.Narrator: "0x2B3A55",
}

// VideoSegment pairs an audio segment with the speaker shown on screen
// while it plays.
type VideoSegment struct {
	AudioPath   string
	SpeakerID   string
	SpeakerName string
}

// VideoAssembler renders the debate as an MP4: one full-screen speaker card
// per turn, with optional title and end branding cards.
type VideoAssembler struct {
	ShowName string
	Title    string
	Branding bool
}

func NewVideoAssembler(showName, title string, branding bool) *VideoAssembler {
	return &VideoAssembler{ShowName: showName, Title: title, Branding: branding}
}

func (a *VideoAssembler) Assemble(ctx context.Context, segments []VideoSegment, tmpDir string, output string) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments to assemble")
	}

	var parts []string

	if a.Branding {
		titleCard := filepath.Join(tmpDir, "card_title.mp4")
		if err := renderBrandingCard(ctx, a.ShowName, a.Title, titleCard); err != nil {
			return fmt.Errorf("render title card: %w", err)
		}
		parts = append(parts, titleCard)
	}

	for i, seg := range segments {
		partPath := filepath.Join(tmpDir, fmt.Sprintf("vseg_%03d.mp4", i))
		if err := renderSpeakerSegment(ctx, seg, partPath); err != nil {
			return fmt.Errorf("render segment %d: %w", i, err)
		}
		parts = append(parts, partPath)
	}

	if a.Branding {
		endCard := filepath.Join(tmpDir, "card_end.mp4")
		if err := renderBrandingCard(ctx, a.ShowName, "Thanks for watching", endCard); err != nil {
			return fmt.Errorf("render end card: %w", err)
		}
		parts = append(parts, endCard)
	}

	listPath := filepath.Join(tmpDir, "vconcat.txt")
	var lines []string
	for _, p := range parts {
		lines = append(lines, fmt.Sprintf("file '%s'", p))
	}
	if err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		output,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg video concat failed: %w\n%s", err, stderr.String())
	}

	return verifyOutput(output)
}

// renderSpeakerSegment lays the turn audio over a colored card carrying the
// speaker's name. All segments share codec parameters so the final concat
// can stream-copy.
func renderSpeakerSegment(ctx context.Context, seg VideoSegment, output string) error {
	color, ok := speakerColors[seg.SpeakerID]
	if !ok {
		color = speakerColors[persona.Narrator]
	}

	label := escapeDrawtext(seg.SpeakerName)
	filter := fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=56:x=(w-text_w)/2:y=(h-text_h)/2",
		label)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%sx%s:r=25", color, VideoWidth, VideoHeight),
		"-i", seg.AudioPath,
		"-vf", filter,
		"-c:v", VideoCodec,
		"-preset", VideoPreset,
		"-pix_fmt", VideoPixFmt,
		"-c:a", VideoAudioCodec,
		"-b:a", AudioBitrate,
		"-ar", AudioSampleRate,
		"-shortest",
		"-y",
		output,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg speaker segment failed: %w\n%s", err, stderr.String())
	}
	return nil
}

func renderBrandingCard(ctx context.Context, heading, subheading, output string) error {
	filter := fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=64:x=(w-text_w)/2:y=(h-text_h)/2-60,"+
			"drawtext=text='%s':fontcolor=0xC9D1D9:fontsize=36:x=(w-text_w)/2:y=(h-text_h)/2+40",
		escapeDrawtext(heading), escapeDrawtext(subheading))

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x10161F:s=%sx%s:r=25", VideoWidth, VideoHeight),
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%s:cl=stereo", AudioSampleRate),
		"-t", brandingCardSeconds,
		"-vf", filter,
		"-c:v", VideoCodec,
		"-preset", VideoPreset,
		"-pix_fmt", VideoPixFmt,
		"-c:a", VideoAudioCodec,
		"-b:a", AudioBitrate,
		"-ar", AudioSampleRate,
		"-y",
		output,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg branding card failed: %w\n%s", err, stderr.String())
	}
	return nil
}

func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\\\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}

// CheckFFmpeg verifies ffmpeg and ffprobe are on PATH.
func CheckFFmpeg() error {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found in PATH: install ffmpeg to assemble output", bin)
		}
	}
	return nil
}
