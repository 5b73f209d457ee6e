package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FrameRate is a rational frames-per-second value such as 24000/1001.
type FrameRate struct {
	Num int `json:"num" mapstructure:"num"`
	Den int `json:"den" mapstructure:"den"`
}

func (r FrameRate) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

func (r FrameRate) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r FrameRate) String() string {
	if r.Den == 1 {
		return strconv.Itoa(r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// ParseFrameRate accepts "30000/1001", "25/1" or a plain integer "24".
func ParseFrameRate(s string) (FrameRate, error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	if !found {
		den = "1"
	}

	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return FrameRate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return FrameRate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	if n <= 0 || d <= 0 {
		return FrameRate{}, fmt.Errorf("invalid frame rate %q: must be positive", s)
	}

	return FrameRate{Num: n, Den: d}, nil
}

// FrameRateFromFloat returns an exact rational for whole and millisecond
// precise rates (24, 23.976, 12.5) and the nearest n/1000000 otherwise.
func FrameRateFromFloat(fps float64) (FrameRate, error) {
	if !(fps > 0) || math.IsInf(fps, 0) {
		return FrameRate{}, fmt.Errorf("invalid frame rate %v: must be positive", fps)
	}
	for _, den := range []int{1, 1000} {
		num := math.Round(fps * float64(den))
		if math.Abs(num/float64(den)-fps) < 1e-9 {
			return reduce(int(num), den), nil
		}
	}
	return reduce(int(math.Round(fps*1e6)), 1000000), nil
}

func reduce(num, den int) FrameRate {
	a, b := num, den
	for b != 0 {
		a, b = b, a%b
	}
	return FrameRate{Num: num / a, Den: den / a}
}
