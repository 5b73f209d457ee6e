package subtitle

import (
	"errors"
	"fmt"
)

// represents single SubRip cue, times in seconds
type Entry struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Duration of the cue in seconds.
func (e Entry) Duration() float64 {
	return e.End - e.Start
}

// ErrEmptyInput is returned when a document holds no well-formed cue.
var ErrEmptyInput = errors.New("no subtitles found in the SRT file")

// BlockError describes a cue block that was skipped while parsing.
type BlockError struct {
	Line int // 1-based line of the block's index
	Err  error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("skipping block at line %d: %v", e.Line, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}
