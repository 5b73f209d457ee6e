package timecode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	ErrInvalidTimeCode = errors.New("invalid time code")
	ErrNegativeTime    = errors.New("time must not be negative")
	ErrInvalidSeconds  = errors.New("time must be a finite number")
)

// HH:MM:SS,mmm (hours may grow past two digits)
var timeCodeRegex = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2}),(\d{3})$`)

// FormatError reports a time code that does not match HH:MM:SS,mmm.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q (want HH:MM:SS,mmm)", ErrInvalidTimeCode, e.Input)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidTimeCode
}

// ParseTimeCode converts HH:MM:SS,mmm to seconds.
func ParseTimeCode(s string) (float64, error) {
	matches := timeCodeRegex.FindStringSubmatch(s)
	if len(matches) != 5 {
		return 0, &FormatError{Input: s}
	}

	h, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, &FormatError{Input: s}
	}
	m, _ := strconv.Atoi(matches[2])
	sec, _ := strconv.Atoi(matches[3])
	ms, _ := strconv.Atoi(matches[4])

	return float64(h)*3600 +
		float64(m)*60 +
		float64(sec) +
		float64(ms)/1000, nil
}

// FormatTimeCode converts seconds to HH:MM:SS,mmm. The seconds field is
// floored and milliseconds are rounded from the fractional part.
func FormatTimeCode(seconds float64) (string, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "", ErrInvalidSeconds
	}
	if seconds < 0 {
		return "", fmt.Errorf("%w: %v", ErrNegativeTime, seconds)
	}

	whole := math.Floor(seconds)
	millis := int64(math.Round((seconds - whole) * 1000))
	if millis > 999 {
		millis = 999
	}

	total := int64(whole)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis), nil
}

// SecondsToFrame maps a time to a frame number, truncating toward the
// earlier frame: offset + floor(seconds*fps). The product is corrected by
// one frame when it lands on the wrong side of a boundary, so the result is
// the largest n with n/fps <= seconds and FrameToSeconds maps back exactly.
func SecondsToFrame(seconds, fps float64, offset int) int {
	n := int(math.Floor(seconds * fps))
	switch {
	case float64(n+1)/fps <= seconds:
		n++
	case float64(n)/fps > seconds:
		n--
	}
	return offset + n
}

// FrameToSeconds maps a frame number back to seconds: (frame-offset)/fps.
func FrameToSeconds(frame int, fps float64, offset int) float64 {
	return float64(frame-offset) / fps
}
