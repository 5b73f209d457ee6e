package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mgpai22/cuestrip/internal/convert"
	ffmpegbin "github.com/mgpai22/cuestrip/internal/ffmpeg"
	"github.com/mgpai22/cuestrip/internal/timeline"
	"github.com/mgpai22/cuestrip/internal/video"
)

func newProcessor() *video.DefaultProcessor {
	return video.NewProcessor(ffmpegbin.NewLocator(cfg.FFmpegPath, cfg.FFprobePath))
}

// resolveFPS applies the configured frame rate policy. The source rate is
// the project's own, then the probed rate of sourceVideo or the project's
// first movie strip. ctx bounds the probe.
func resolveFPS(
	ctx context.Context,
	project *timeline.Project,
	sourceVideo string,
	prober video.InfoGetter,
) (float64, error) {
	sources := convert.FPSSources{project}

	if sourceVideo == "" {
		sourceVideo = project.SourceMedia()
	}
	if sourceVideo != "" && prober != nil {
		sources = append(sources, video.FrameRateSource{
			Ctx:    ctx,
			Prober: prober,
			Path:   sourceVideo,
		})
	}

	return convert.ResolveFPS(cfg.FPS.UseSource, cfg.FPS.Custom, sources)
}

func reportSuccess(w io.Writer, file string, count int, direction string, fps float64) {
	fmt.Fprintf(w,
		"Success. From [%s] there are [%d] subtitles %s using FPS: [%.3f]\n",
		file,
		count,
		direction,
		fps,
	)
}
