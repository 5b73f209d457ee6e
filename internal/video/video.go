package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/cuestrip/internal/ffmpeg"
	"github.com/mgpai22/cuestrip/internal/timecode"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate timecode.FrameRate
	Codec     string

	// subtitle tracks already in the file
	SubtitleStreams int
}

// FPS is the stream frame rate as a float, 0 when ffprobe reported none.
func (i *Info) FPS() float64 {
	return i.FrameRate.Float()
}

// defines interface for video processing operations
type Processor interface {
	// retrieves video stream information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)

	// muxes a subtitle file into a copy of the video as a soft track
	EmbedSubtitles(
		ctx context.Context,
		videoPath, subtitlePath, outputPath string,
		opts EmbedOptions,
	) error
}

// holds options for subtitle embedding
type EmbedOptions struct {
	Language string // ISO 639-2 tag written to the track, e.g. "eng"
}

// default implementation using ffprobe and ffmpeg
type DefaultProcessor struct {
	bins *ffmpegbin.Locator
}

func NewProcessor(bins *ffmpegbin.Locator) *DefaultProcessor {
	if bins == nil {
		bins = ffmpegbin.NewLocator("", "")
	}
	return &DefaultProcessor{bins: bins}
}

// retrieves video stream information
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file: %w", err)
	}

	ffprobePath, err := p.bins.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		videoPath,
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(
			"ffprobe failed: %w: %s",
			err,
			strings.TrimSpace(stderr.String()),
		)
	}

	return parseProbe(videoPath, out.Bytes())
}

// muxes a subtitle file into a copy of the video as a soft track
func (p *DefaultProcessor) EmbedSubtitles(
	ctx context.Context,
	videoPath, subtitlePath, outputPath string,
	opts EmbedOptions,
) error {
	for _, path := range []string{videoPath, subtitlePath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("embed input: %w", err)
		}
	}

	if sameFile(videoPath, outputPath) {
		return fmt.Errorf("output %s would overwrite the source video", outputPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := p.bins.FFmpegPath()
	if err != nil {
		return err
	}

	// the new track follows the video's own subtitle tracks
	existing := 0
	if opts.Language != "" {
		info, err := p.GetInfo(ctx, videoPath)
		if err != nil {
			return err
		}
		existing = info.SubtitleStreams
	}

	args := embedArgs(videoPath, subtitlePath, outputPath, opts, existing)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf(
			"ffmpeg embedding failed: %w: %s",
			err,
			lastLine(stderr.String()),
		)
	}

	return nil
}

// existingSubs is the subtitle track count of the video, which is also the
// output subtitle index of the muxed track
func embedArgs(
	videoPath, subtitlePath, outputPath string,
	opts EmbedOptions,
	existingSubs int,
) []string {
	kwargs := ffmpeg.KwArgs{
		"c":   "copy",                    // keep audio/video as is
		"c:s": subtitleCodec(outputPath), // container's text codec
	}
	if opts.Language != "" {
		key := fmt.Sprintf("metadata:s:s:%d", existingSubs)
		kwargs[key] = "language=" + opts.Language
	}

	return ffmpeg.Output(
		[]*ffmpeg.Stream{ffmpeg.Input(videoPath), ffmpeg.Input(subtitlePath)},
		outputPath,
		kwargs,
	).OverWriteOutput().GetArgs()
}

// mp4 family containers only carry mov_text subtitles
func subtitleCodec(outputPath string) string {
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".mp4", ".m4v", ".mov":
		return "mov_text"
	case ".webm":
		return "webvtt"
	default:
		return "srt"
	}
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}
