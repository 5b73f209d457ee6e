package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgpai22/cuestrip/internal/logging"
	"github.com/mgpai22/cuestrip/internal/subtitle"
	"github.com/mgpai22/cuestrip/internal/timeline"
)

// settings for one import
type ImportOptions struct {
	SourcePath string
	StartFrame int
	Channel    int
	FPS        float64
	Style      *timeline.Style
}

// settings for one export
type ExportOptions struct {
	DestinationPath string
	FPS             float64
}

type ImportResult struct {
	Source  string
	Count   int
	Skipped int
	FPS     float64
	Entries []timeline.PlacedEntry
}

type ExportResult struct {
	Destination string
	Count       int
	FPS         float64
}

// Importer runs the SRT -> timeline pipeline.
type Importer struct {
	Logger *logging.Logger
}

func NewImporter(logger *logging.Logger) *Importer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Importer{Logger: logger}
}

func (o ImportOptions) Validate() error {
	if o.SourcePath == "" {
		return &ConfigError{Field: "source path", Value: `""`, Reason: "must not be empty"}
	}
	if !validFPS(o.FPS) {
		return &ConfigError{Field: "fps", Value: o.FPS, Reason: "must be positive"}
	}
	if o.Channel < timeline.MinChannel || o.Channel > timeline.MaxChannel {
		return &ConfigError{
			Field:  "channel",
			Value:  o.Channel,
			Reason: fmt.Sprintf("must be between %d and %d", timeline.MinChannel, timeline.MaxChannel),
		}
	}
	return nil
}

// Import parses opts.SourcePath and hands the placed cues to placer.
func (im *Importer) Import(
	ctx context.Context,
	opts ImportOptions,
	placer timeline.Placer,
) (*ImportResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	skipped := 0
	parser := &subtitle.Parser{OnSkip: func(err *subtitle.BlockError) {
		skipped++
		im.Logger.Debugw("Skipping malformed block",
			"source", opts.SourcePath,
			"line", err.Line,
			"reason", err.Err,
		)
	}}

	file, err := subtitle.Open(opts.SourcePath, parser)
	if err != nil {
		if errors.Is(err, subtitle.ErrEmptyInput) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(opts.SourcePath), err)
		}
		return nil, fmt.Errorf("error importing SRT: %w", err)
	}

	placed := PlaceEntries(file.Entries, opts.FPS, opts.StartFrame, opts.Channel, opts.Style)

	im.Logger.Debugw("Mapped subtitles to frames",
		"entries", len(placed),
		"skipped", skipped,
		"fps", opts.FPS,
		"start_frame", opts.StartFrame,
	)

	if err := placer.PlaceEntries(placed, opts.Channel); err != nil {
		return nil, fmt.Errorf("failed to place subtitles: %w", err)
	}

	return &ImportResult{
		Source:  filepath.Base(opts.SourcePath),
		Count:   len(placed),
		Skipped: skipped,
		FPS:     opts.FPS,
		Entries: placed,
	}, nil
}

// Exporter runs the timeline -> SRT pipeline.
type Exporter struct {
	Logger *logging.Logger
}

func NewExporter(logger *logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Exporter{Logger: logger}
}

func (o ExportOptions) Validate() error {
	if o.DestinationPath == "" {
		return &ConfigError{Field: "destination path", Value: `""`, Reason: "must not be empty"}
	}
	if info, err := os.Stat(o.DestinationPath); err == nil && info.IsDir() {
		return &ConfigError{Field: "destination path", Value: o.DestinationPath, Reason: "is a directory"}
	}
	if !validFPS(o.FPS) {
		return &ConfigError{Field: "fps", Value: o.FPS, Reason: "must be positive"}
	}
	return nil
}

// Export writes the selector's cues to opts.DestinationPath. The file is
// replaced atomically; on error no file is created.
func (ex *Exporter) Export(
	ctx context.Context,
	opts ExportOptions,
	selector timeline.Selector,
) (*ExportResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	selected, err := selector.SelectedEntries()
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	if len(selected) == 0 {
		return nil, ErrNoSelection
	}

	entries, err := ExportEntries(selected, opts.FPS)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ex.Logger.Debugw("Writing subtitles",
		"destination", opts.DestinationPath,
		"entries", len(entries),
		"fps", opts.FPS,
	)

	if err := subtitle.WriteFile(opts.DestinationPath, entries); err != nil {
		return nil, fmt.Errorf("error exporting SRT: %w", err)
	}

	return &ExportResult{
		Destination: filepath.Base(opts.DestinationPath),
		Count:       len(entries),
		FPS:         opts.FPS,
	}, nil
}
