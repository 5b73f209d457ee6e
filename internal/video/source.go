package video

import (
	"context"
	"fmt"
	"time"
)

const defaultProbeTimeout = 30 * time.Second

// InfoGetter is the probing half of Processor.
type InfoGetter interface {
	GetInfo(ctx context.Context, videoPath string) (*Info, error)
}

// FrameRateSource reports the frame rate of a video file, so a probed video
// can stand in for a timeline that has no rate of its own.
// Ctx bounds the probe together with Timeout; nil means
// context.Background().
type FrameRateSource struct {
	Ctx     context.Context
	Prober  InfoGetter
	Path    string
	Timeout time.Duration
}

func (s FrameRateSource) EffectiveFPS() (float64, error) {
	if s.Path == "" {
		return 0, fmt.Errorf("no source video")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	parent := s.Ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	info, err := s.Prober.GetInfo(ctx, s.Path)
	if err != nil {
		return 0, err
	}
	if info.FrameRate.IsZero() {
		return 0, fmt.Errorf("%s: ffprobe reported no frame rate", s.Path)
	}
	return info.FPS(), nil
}
