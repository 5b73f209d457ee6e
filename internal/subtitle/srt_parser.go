package subtitle

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mgpai22/cuestrip/internal/timecode"
)

const byteOrderMark = "\ufeff"

var (
	ErrEmptyText     = errors.New("cue has no text")
	ErrInvertedRange = errors.New("cue ends before it starts")
)

// Parser reads SubRip documents. Malformed blocks are skipped, OnSkip (if
// set) is told about each one.
type Parser struct {
	OnSkip func(err *BlockError)
}

// Parse reads a whole SubRip document with the default parser.
func Parse(r io.Reader) ([]Entry, error) {
	return (&Parser{}).Parse(r)
}

// ParseString is Parse for in-memory documents.
func ParseString(content string) ([]Entry, error) {
	return (&Parser{}).ParseString(content)
}

func (p *Parser) Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading SRT data: %w", err)
	}
	return p.ParseString(string(data))
}

// ParseString scans for blocks of the form
//
//	<index>
//	<HH:MM:SS,mmm> --> <HH:MM:SS,mmm>
//	<text lines>
//
// where the text runs until a blank line followed by another index line, or
// the end of input.
func (p *Parser) ParseString(content string) ([]Entry, error) {
	content = strings.TrimPrefix(content, byteOrderMark)
	content = normalizeNewlines(content)
	lines := strings.Split(content, "\n")

	var entries []Entry
	i := 0
	// index and timing lines must both be newline terminated
	for i+2 < len(lines) {
		if !isIndexLine(lines[i]) {
			i++
			continue
		}

		start, end, err := parseTimingLine(lines[i+1])
		if err != nil {
			if strings.Contains(lines[i+1], "-->") {
				p.skip(i+1, err)
			}
			i++
			continue
		}

		textEnd := findTextEnd(lines, i+2)
		text := trimBlankLines(lines[i+2 : textEnd])

		switch {
		case text == "":
			p.skip(i+1, ErrEmptyText)
		case end < start:
			p.skip(i+1, fmt.Errorf(
				"%w: %s",
				ErrInvertedRange,
				strings.TrimSpace(lines[i+1]),
			))
		default:
			index, _ := strconv.Atoi(lines[i])
			entries = append(entries, Entry{
				Index: index,
				Start: start,
				End:   end,
				Text:  text,
			})
		}

		i = textEnd
	}

	if len(entries) == 0 {
		return nil, ErrEmptyInput
	}

	return entries, nil
}

func (p *Parser) skip(lineIdx int, err error) {
	if p.OnSkip != nil {
		p.OnSkip(&BlockError{Line: lineIdx, Err: err})
	}
}

func parseTimingLine(line string) (float64, float64, error) {
	startStr, endStr, found := strings.Cut(line, " --> ")
	if !found {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}

	start, err := timecode.ParseTimeCode(startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("start time: %w", err)
	}
	end, err := timecode.ParseTimeCode(endStr)
	if err != nil {
		return 0, 0, fmt.Errorf("end time: %w", err)
	}

	return start, end, nil
}

// returns the exclusive end of a block's text: the first blank line that is
// followed by a newline terminated index line, or len(lines)
func findTextEnd(lines []string, from int) int {
	for l := from; l < len(lines); l++ {
		if lines[l] == "" && l+1 < len(lines)-1 && isIndexLine(lines[l+1]) {
			return l
		}
	}
	return len(lines)
}

func isIndexLine(line string) bool {
	if line == "" {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] < '0' || line[i] > '9' {
			return false
		}
	}
	return true
}

func trimBlankLines(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
