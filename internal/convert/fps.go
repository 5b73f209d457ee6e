package convert

import (
	"errors"
	"fmt"
	"math"
)

// limits and defaults shared by import and export
const (
	DefaultFPS        = 24.0
	MinCustomFPS      = 1.0
	DefaultStartFrame = 1
	DefaultChannel    = 1
)

// FPSSource is the host's frame rate, e.g. a project or a probed video.
type FPSSource interface {
	EffectiveFPS() (float64, error)
}

// FPSSources tries each source in order and returns the first usable rate.
type FPSSources []FPSSource

func (s FPSSources) EffectiveFPS() (float64, error) {
	var errs []error
	for _, src := range s {
		if src == nil {
			continue
		}
		fps, err := src.EffectiveFPS()
		if err == nil && validFPS(fps) {
			return fps, nil
		}
		if err == nil {
			err = fmt.Errorf("unusable frame rate %v", fps)
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return 0, errors.New("no frame rate source available")
	}
	return 0, errors.Join(errs...)
}

// ResolveFPS picks the source frame rate when useSource is set, otherwise
// the custom value, which must be at least MinCustomFPS.
func ResolveFPS(useSource bool, custom float64, src FPSSource) (float64, error) {
	if !useSource {
		if !validFPS(custom) || custom < MinCustomFPS {
			return 0, &ConfigError{
				Field:  "fps",
				Value:  custom,
				Reason: fmt.Sprintf("custom frame rate must be at least %.1f", MinCustomFPS),
			}
		}
		return custom, nil
	}

	if src == nil {
		return 0, &ConfigError{
			Field:  "fps",
			Value:  "source",
			Reason: "no frame rate source available",
		}
	}

	fps, err := src.EffectiveFPS()
	if err != nil {
		return 0, fmt.Errorf("failed to read source frame rate: %w", err)
	}
	if !validFPS(fps) {
		return 0, &ConfigError{
			Field:  "fps",
			Value:  fps,
			Reason: "source frame rate must be positive",
		}
	}
	return fps, nil
}

func validFPS(fps float64) bool {
	return fps > 0 && !math.IsInf(fps, 0) && !math.IsNaN(fps)
}
