package subtitle

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mgpai22/cuestrip/internal/fsutil"
	"github.com/mgpai22/cuestrip/internal/timecode"
)

// Write serializes entries as SubRip. Index values are written as given and
// the text is copied verbatim.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, entry := range entries {
		start, err := timecode.FormatTimeCode(entry.Start)
		if err != nil {
			return fmt.Errorf("entry %d start: %w", entry.Index, err)
		}
		end, err := timecode.FormatTimeCode(entry.End)
		if err != nil {
			return fmt.Errorf("entry %d end: %w", entry.Index, err)
		}

		// index, timing, text, separating blank line
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			entry.Index, start, end, entry.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes entries to path without ever leaving a partial file.
func WriteFile(path string, entries []Entry) error {
	return fsutil.WriteAtomic(path, func(w io.Writer) error {
		if err := Write(w, entries); err != nil {
			return fmt.Errorf("failed to write SRT file: %w", err)
		}
		return nil
	})
}
