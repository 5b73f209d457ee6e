package convert

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/cuestrip/internal/subtitle"
	"github.com/mgpai22/cuestrip/internal/timeline"
)

const twoCues = "1\n00:00:01,000 --> 00:00:02,500\nHello\n\n" +
	"2\n00:00:03,000 --> 00:00:04,000\nWorld\nline two\n"

func writeSRT(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.srt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func importOpts(path string) ImportOptions {
	return ImportOptions{
		SourcePath: path,
		StartFrame: DefaultStartFrame,
		Channel:    DefaultChannel,
		FPS:        DefaultFPS,
	}
}

type failingPlacer struct{}

func (failingPlacer) PlaceEntries([]timeline.PlacedEntry, int) error {
	return errors.New("timeline locked")
}

type staticSelector []timeline.PlacedEntry

func (s staticSelector) SelectedEntries() ([]timeline.PlacedEntry, error) {
	return s, nil
}

func TestImportPlacesFrames(t *testing.T) {
	project := timeline.NewProject("test")
	style := timeline.DefaultStyle()
	opts := importOpts(writeSRT(t, twoCues))
	opts.Style = &style

	res, err := NewImporter(nil).Import(context.Background(), opts, project)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, "input.srt", res.Source)
	assert.Equal(t, 24.0, res.FPS)

	require.Len(t, project.Strips, 2)
	first, second := project.Strips[0], project.Strips[1]

	assert.Equal(t, 25, first.FrameStart)
	assert.Equal(t, 61, first.FrameEnd)
	assert.Equal(t, "Hello", first.Text)
	assert.Equal(t, "Subtitle 1", first.Name)

	assert.Equal(t, 73, second.FrameStart)
	assert.Equal(t, 97, second.FrameEnd)
	assert.Equal(t, "World\nline two", second.Text)

	for _, s := range project.Strips {
		assert.Equal(t, timeline.StripText, s.Type)
		assert.Equal(t, 1, s.Channel)
		assert.True(t, s.Selected)
		require.NotNil(t, s.Style)
		assert.Equal(t, style, *s.Style)
	}
}

func TestImportHonorsOffsetAndChannel(t *testing.T) {
	project := timeline.NewProject("test")
	opts := importOpts(writeSRT(t, twoCues))
	opts.StartFrame = 100
	opts.Channel = 5
	opts.FPS = 25

	_, err := NewImporter(nil).Import(context.Background(), opts, project)
	require.NoError(t, err)

	require.Len(t, project.Strips, 2)
	assert.Equal(t, 125, project.Strips[0].FrameStart)
	assert.Equal(t, 162, project.Strips[0].FrameEnd)
	assert.Equal(t, 5, project.Strips[0].Channel)
}

func TestImportCountsSkippedBlocks(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\nok\n\n" +
		"2\n00:00:05,000 --> 00:00:04,000\ninverted\n\n" +
		"3\n00:00:06,000 --> 00:00:07,000\nalso ok\n"

	project := timeline.NewProject("test")
	res, err := NewImporter(nil).Import(context.Background(), importOpts(writeSRT(t, content)), project)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, project.Strips, 2)
}

func TestImportErrors(t *testing.T) {
	ctx := context.Background()
	im := NewImporter(nil)

	t.Run("empty file", func(t *testing.T) {
		project := timeline.NewProject("test")
		_, err := im.Import(ctx, importOpts(writeSRT(t, "")), project)
		assert.ErrorIs(t, err, subtitle.ErrEmptyInput)
		assert.Empty(t, project.Strips)
	})

	t.Run("missing file", func(t *testing.T) {
		opts := importOpts(filepath.Join(t.TempDir(), "nope.srt"))
		_, err := im.Import(ctx, opts, timeline.NewProject("test"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("placer failure", func(t *testing.T) {
		_, err := im.Import(ctx, importOpts(writeSRT(t, twoCues)), failingPlacer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeline locked")
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := im.Import(cctx, importOpts(writeSRT(t, twoCues)), timeline.NewProject("test"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestImportConfigErrors(t *testing.T) {
	path := writeSRT(t, twoCues)
	tests := []struct {
		name  string
		mod   func(*ImportOptions)
		field string
	}{
		{"empty path", func(o *ImportOptions) { o.SourcePath = "" }, "source path"},
		{"zero fps", func(o *ImportOptions) { o.FPS = 0 }, "fps"},
		{"nan fps", func(o *ImportOptions) { o.FPS = math.NaN() }, "fps"},
		{"channel too low", func(o *ImportOptions) { o.Channel = 0 }, "channel"},
		{"channel too high", func(o *ImportOptions) { o.Channel = 33 }, "channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := importOpts(path)
			tt.mod(&opts)
			project := timeline.NewProject("test")

			_, err := NewImporter(nil).Import(context.Background(), opts, project)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Empty(t, project.Strips)
		})
	}
}

func TestExportOrdersAndRenumbers(t *testing.T) {
	selector := staticSelector{
		{Name: "c", StartFrame: 50, EndFrame: 60, Text: "third"},
		{Name: "a", StartFrame: 10, EndFrame: 20, Text: "first"},
		{Name: "b", StartFrame: 30, EndFrame: 40, Text: "second"},
	}
	out := filepath.Join(t.TempDir(), "out.srt")

	res, err := NewExporter(nil).Export(
		context.Background(),
		ExportOptions{DestinationPath: out, FPS: 24},
		selector,
	)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, "out.srt", res.Destination)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	entries, err := subtitle.ParseString(string(data))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i, want := range []string{"first", "second", "third"} {
		assert.Equal(t, i+1, entries[i].Index)
		assert.Equal(t, want, entries[i].Text)
	}

	// the selector's order is untouched
	assert.Equal(t, "c", selector[0].Name)
}

func TestExportFrameToTime(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.srt")
	selector := staticSelector{
		{StartFrame: 25, EndFrame: 61, Text: "Hello"},
		{StartFrame: 0, EndFrame: 12, Text: "before one"},
	}

	_, err := NewExporter(nil).Export(
		context.Background(),
		ExportOptions{DestinationPath: out, FPS: 24},
		selector,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"1\n00:00:00,000 --> 00:00:00,500\nbefore one\n\n"+
			"2\n00:00:01,000 --> 00:00:02,542\nHello\n\n",
		string(data),
	)
}

func TestExportNoSelection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.srt")

	_, err := NewExporter(nil).Export(
		context.Background(),
		ExportOptions{DestinationPath: out, FPS: 24},
		timeline.NewProject("empty"),
	)
	assert.ErrorIs(t, err, ErrNoSelection)

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no file should be created")
}

func TestExportConfigErrors(t *testing.T) {
	dir := t.TempDir()
	selector := staticSelector{{StartFrame: 1, EndFrame: 10, Text: "x"}}

	tests := []struct {
		name string
		opts ExportOptions
	}{
		{"empty path", ExportOptions{FPS: 24}},
		{"directory", ExportOptions{DestinationPath: dir, FPS: 24}},
		{"zero fps", ExportOptions{DestinationPath: filepath.Join(dir, "a.srt")}},
		{"negative fps", ExportOptions{DestinationPath: filepath.Join(dir, "b.srt"), FPS: -24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExporter(nil).Export(context.Background(), tt.opts, selector)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoundTripImportExport(t *testing.T) {
	content := "1\n00:00:00,040 --> 00:00:01,999\nfirst\n\n" +
		"2\n00:00:02,123 --> 00:00:03,456\nsecond\nwith two lines\n\n" +
		"3\n00:01:00,500 --> 00:01:02,000\nthird\n\n" +
		"4\n01:00:00,001 --> 01:00:00,002\ntiny\n"

	original, err := subtitle.ParseString(content)
	require.NoError(t, err)

	for _, fps := range []float64{23.976, 24, 25, 29.97, 30, 50, 60} {
		project := timeline.NewProject("rt")
		opts := importOpts(writeSRT(t, content))
		opts.FPS = fps

		_, err := NewImporter(nil).Import(context.Background(), opts, project)
		require.NoError(t, err)

		out := filepath.Join(t.TempDir(), "rt.srt")
		_, err = NewExporter(nil).Export(
			context.Background(),
			ExportOptions{DestinationPath: out, FPS: fps},
			project,
		)
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		got, err := subtitle.ParseString(string(data))
		require.NoError(t, err)
		require.Len(t, got, len(original))

		tolerance := 1/fps + 0.001
		for i := range original {
			assert.Equal(t, original[i].Text, got[i].Text)
			assert.InDelta(t, original[i].Start, got[i].Start, tolerance, "start fps=%v cue=%d", fps, i+1)
			assert.InDelta(t, original[i].End, got[i].End, tolerance, "end fps=%v cue=%d", fps, i+1)
			// export never starts later than the source
			assert.LessOrEqual(t, got[i].Start, original[i].Start+0.0005)
		}
	}
}

// At 25 fps every frame boundary is a whole millisecond, so the only drift
// is the exporter's start-1: starts come back exactly, ends one frame later.
func TestRoundTripExportImportFrames(t *testing.T) {
	source := timeline.NewProject("src")
	require.NoError(t, source.PlaceEntries([]timeline.PlacedEntry{
		{Name: "a", StartFrame: 10, EndFrame: 20, Text: "a"},
		{Name: "b", StartFrame: 1, EndFrame: 48, Text: "b"},
		{Name: "c", StartFrame: 240, EndFrame: 241, Text: "c"},
	}, 1))

	out := filepath.Join(t.TempDir(), "frames.srt")
	_, err := NewExporter(nil).Export(
		context.Background(),
		ExportOptions{DestinationPath: out, FPS: 25},
		source,
	)
	require.NoError(t, err)

	target := timeline.NewProject("dst")
	opts := importOpts(out)
	opts.FPS = 25
	_, err = NewImporter(nil).Import(context.Background(), opts, target)
	require.NoError(t, err)

	want := map[string][2]int{"a": {10, 21}, "b": {1, 49}, "c": {240, 242}}
	require.Len(t, target.Strips, 3)
	for _, s := range target.Strips {
		w := want[s.Text]
		assert.Equal(t, w[0], s.FrameStart, "start of %s", s.Text)
		assert.Equal(t, w[1], s.FrameEnd, "end of %s", s.Text)
	}
}
