package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgpai22/cuestrip/internal/subtitle"
)

// TranslateEntries returns a copy of entries with translated text. Timing
// and order are untouched. With overlay the translation is placed above the
// original text in the same cue.
func TranslateEntries(
	ctx context.Context,
	tr Translator,
	entries []subtitle.Entry,
	concurrency int,
	overlay bool,
) ([]subtitle.Entry, error) {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Index: i, Text: e.Text}
	}

	var (
		results []Result
		err     error
	)
	if ct, ok := tr.(ConcurrentTranslator); ok {
		results, err = ct.TranslateWithConcurrency(ctx, items, concurrency)
	} else {
		results, err = tr.Translate(ctx, items)
	}
	if err != nil {
		return nil, err
	}

	out := make([]subtitle.Entry, len(entries))
	copy(out, entries)

	seen := make([]bool, len(entries))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(entries) {
			return nil, fmt.Errorf("translation index %d out of range", r.Index)
		}
		text := cueText(r.Text)
		if text == "" {
			continue
		}
		seen[r.Index] = true
		if overlay {
			out[r.Index].Text = text + "\n" + entries[r.Index].Text
		} else {
			out[r.Index].Text = text
		}
	}

	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("no translation for cue %d", entries[i].Index)
		}
	}

	return out, nil
}

// a blank line inside a cue would end the block, so drop them
func cueText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimRight(line, " \t\r"))
		}
	}
	return strings.Join(kept, "\n")
}
