package convert

import (
	"fmt"
	"math"
	"sort"

	"github.com/mgpai22/cuestrip/internal/subtitle"
	"github.com/mgpai22/cuestrip/internal/timecode"
	"github.com/mgpai22/cuestrip/internal/timeline"
)

// PlaceEntries maps parsed cues onto frames, keeping order and count.
// Both ends truncate: offset + floor(t*fps). A cue shorter than a frame
// becomes a zero length strip.
func PlaceEntries(
	entries []subtitle.Entry,
	fps float64,
	offset int,
	channel int,
	style *timeline.Style,
) []timeline.PlacedEntry {
	placed := make([]timeline.PlacedEntry, len(entries))
	for i, e := range entries {
		placed[i] = timeline.PlacedEntry{
			Name:       fmt.Sprintf("Subtitle %d", e.Index),
			StartFrame: timecode.SecondsToFrame(e.Start, fps, offset),
			EndFrame:   timecode.SecondsToFrame(e.End, fps, offset),
			Text:       e.Text,
			Channel:    channel,
			Style:      style,
		}
	}
	return placed
}

// ExportEntries orders strips by start frame (stable), numbers them from 1
// and converts frames to seconds.
//
// The start uses (frame-1)/fps because frame 1 is the first displayed
// frame, while the exclusive end frame is divided as is. Import places cues
// at offset+floor(t*fps); with the default offset of 1 the two directions
// agree to within one frame.
func ExportEntries(placed []timeline.PlacedEntry, fps float64) ([]subtitle.Entry, error) {
	if len(placed) == 0 {
		return nil, ErrNoSelection
	}
	if !validFPS(fps) {
		return nil, &ConfigError{Field: "fps", Value: fps, Reason: "must be positive"}
	}

	sorted := make([]timeline.PlacedEntry, len(placed))
	copy(sorted, placed)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartFrame < sorted[j].StartFrame
	})

	entries := make([]subtitle.Entry, len(sorted))
	for i, p := range sorted {
		// strips before frame 1 are clamped to time zero
		start := math.Max(0, float64(p.StartFrame-1)/fps)
		end := math.Max(start, float64(p.EndFrame)/fps)

		entries[i] = subtitle.Entry{
			Index: i + 1,
			Start: start,
			End:   end,
			Text:  p.Text,
		}
	}
	return entries, nil
}
