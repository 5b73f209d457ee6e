package video

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/cuestrip/internal/timecode"
)

const probeNTSC = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "r_frame_rate": "24000/1001",
      "avg_frame_rate": "24000/1001",
      "duration": "12.512000"
    }
  ],
  "format": {
    "duration": "12.600000"
  }
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe("clip.mp4", []byte(probeNTSC))
	require.NoError(t, err)

	assert.Equal(t, "clip.mp4", info.Path)
	assert.Equal(t, "h264", info.Codec)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, timecode.FrameRate{Num: 24000, Den: 1001}, info.FrameRate)
	assert.InDelta(t, 23.976, info.FPS(), 0.001)
	assert.Equal(t, 12512*time.Millisecond, info.Duration)
}

func TestParseProbeFallbacks(t *testing.T) {
	data := `{
	  "streams": [{
	    "codec_type": "video",
	    "codec_name": "vp9",
	    "r_frame_rate": "0/0",
	    "avg_frame_rate": "25/1"
	  }],
	  "format": {"duration": "3.5"}
	}`

	info, err := parseProbe("clip.webm", []byte(data))
	require.NoError(t, err)
	assert.Equal(t, 25.0, info.FPS())
	assert.Equal(t, 3500*time.Millisecond, info.Duration)
}

func TestParseProbeErrors(t *testing.T) {
	_, err := parseProbe("x.mp4", []byte(`{"streams": []}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = parseProbe("x.mp4", []byte(`{"streams": [{"codec_type": "audio"}]}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = parseProbe("x.mp4", []byte(`not json`))
	assert.Error(t, err)
}

func TestEmbedArgs(t *testing.T) {
	args := embedArgs("in.mp4", "subs.srt", "out.mp4", EmbedOptions{Language: "eng"}, 0)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-i in.mp4")
	assert.Contains(t, joined, "-i subs.srt")
	assert.Contains(t, joined, "-c copy")
	assert.Contains(t, joined, "-c:s mov_text")
	assert.Contains(t, joined, "-metadata:s:s:0 language=eng")
	assert.Contains(t, args, "-y")
	assert.Contains(t, args, "out.mp4")
	assert.Less(t,
		strings.Index(joined, "in.mp4"),
		strings.Index(joined, "subs.srt"),
		"video must be the first input",
	)

	mkv := strings.Join(embedArgs("in.mp4", "subs.srt", "out.mkv", EmbedOptions{}, 2), " ")
	assert.Contains(t, mkv, "-c:s srt")
	assert.NotContains(t, mkv, "metadata")
}

func TestEmbedArgsTagsAppendedTrack(t *testing.T) {
	joined := strings.Join(
		embedArgs("in.mkv", "subs.srt", "out.mkv", EmbedOptions{Language: "jpn"}, 2),
		" ",
	)
	assert.Contains(t, joined, "-metadata:s:s:2 language=jpn")
	assert.NotContains(t, joined, "-metadata:s:s:0")
}

func TestParseProbeCountsSubtitleTracks(t *testing.T) {
	data := `{
	  "streams": [
	    {"codec_type": "subtitle", "codec_name": "subrip"},
	    {"codec_type": "video", "codec_name": "h264", "r_frame_rate": "25/1"},
	    {"codec_type": "audio", "codec_name": "aac"},
	    {"codec_type": "video", "codec_name": "mjpeg", "r_frame_rate": "90000/1"},
	    {"codec_type": "subtitle", "codec_name": "ass"}
	  ]
	}`
	info, err := parseProbe("movie.mkv", []byte(data))
	require.NoError(t, err)
	assert.Equal(t, 2, info.SubtitleStreams)
	assert.Equal(t, "h264", info.Codec)
	assert.Equal(t, 25.0, info.FPS())
}

func TestSubtitleCodec(t *testing.T) {
	tests := map[string]string{
		"a.mp4":  "mov_text",
		"a.MOV":  "mov_text",
		"a.m4v":  "mov_text",
		"a.mkv":  "srt",
		"a.webm": "webvtt",
		"a.avi":  "srt",
	}
	for path, want := range tests {
		assert.Equal(t, want, subtitleCodec(path), path)
	}
}

func TestEmbedSubtitlesRejectsMissingInputs(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(nil)

	err := p.EmbedSubtitles(
		context.Background(),
		filepath.Join(dir, "missing.mp4"),
		filepath.Join(dir, "missing.srt"),
		filepath.Join(dir, "out.mkv"),
		EmbedOptions{},
	)
	assert.Error(t, err)
}

type fakeProber struct {
	info *Info
	err  error
	path string
}

func (f *fakeProber) GetInfo(_ context.Context, path string) (*Info, error) {
	f.path = path
	return f.info, f.err
}

func TestFrameRateSource(t *testing.T) {
	prober := &fakeProber{info: &Info{FrameRate: timecode.FrameRate{Num: 30000, Den: 1001}}}
	src := FrameRateSource{Prober: prober, Path: "clip.mov"}

	fps, err := src.EffectiveFPS()
	require.NoError(t, err)
	assert.InDelta(t, 29.97, fps, 0.001)
	assert.Equal(t, "clip.mov", prober.path)

	_, err = FrameRateSource{Prober: &fakeProber{info: &Info{}}, Path: "x"}.EffectiveFPS()
	assert.Error(t, err)

	boom := errors.New("probe failed")
	_, err = FrameRateSource{Prober: &fakeProber{err: boom}, Path: "x"}.EffectiveFPS()
	assert.ErrorIs(t, err, boom)

	_, err = FrameRateSource{Prober: prober}.EffectiveFPS()
	assert.Error(t, err)
}

// blocks until the probe context ends, like a hung ffprobe
type hangingProber struct{}

func (hangingProber) GetInfo(ctx context.Context, _ string) (*Info, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFrameRateSourceHonoursParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := FrameRateSource{Ctx: ctx, Prober: hangingProber{}, Path: "clip.mov", Timeout: time.Hour}
	_, err := src.EffectiveFPS()
	assert.ErrorIs(t, err, context.Canceled)

	src = FrameRateSource{Prober: hangingProber{}, Path: "clip.mov", Timeout: time.Millisecond}
	_, err = src.EffectiveFPS()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("movie.MKV"))
	assert.True(t, IsVideoFile("/tmp/clip.mp4"))
	assert.False(t, IsVideoFile("subs.srt"))
	assert.False(t, IsVideoFile("noext"))
}
