package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgpai22/cuestrip/internal/fsutil"
	"github.com/mgpai22/cuestrip/internal/timecode"
)

// strip kinds stored in a project
type StripType string

const (
	StripText  StripType = "TEXT"
	StripMovie StripType = "MOVIE"
	StripSound StripType = "SOUND"
	StripColor StripType = "COLOR"
)

var ErrNoFrameRate = errors.New("project has no frame rate")

// one element on the timeline
type Strip struct {
	Name       string    `json:"name"`
	Type       StripType `json:"type"`
	Channel    int       `json:"channel"`
	FrameStart int       `json:"frame_start"`
	FrameEnd   int       `json:"frame_end"`
	Text       string    `json:"text,omitempty"`
	Filepath   string    `json:"filepath,omitempty"`
	Selected   bool      `json:"selected"`
	Style      *Style    `json:"style,omitempty"`
}

// Project is a timeline document persisted as JSON. It is the host side of
// import and export: a Placer, a Selector and a frame rate source.
type Project struct {
	Name      string             `json:"name"`
	FrameRate timecode.FrameRate `json:"frame_rate"`
	Strips    []Strip            `json:"strips"`
}

func NewProject(name string) *Project {
	return &Project{Name: name}
}

func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}

	for i, s := range p.Strips {
		if s.FrameEnd < s.FrameStart {
			return nil, fmt.Errorf(
				"strip %d (%s) ends at frame %d before its start %d",
				i,
				s.Name,
				s.FrameEnd,
				s.FrameStart,
			)
		}
	}

	return &p, nil
}

// LoadOrNew loads path, or starts an empty project named after the file
// when it does not exist yet.
func LoadOrNew(path string) (*Project, error) {
	p, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		base := filepath.Base(path)
		return NewProject(base[:len(base)-len(filepath.Ext(base))]), nil
	}
	return p, err
}

// Save writes the project through a temp file so a failed write keeps the
// previous document intact.
func (p *Project) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	data = append(data, '\n')

	return fsutil.WriteAtomic(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write project: %w", err)
		}
		return nil
	})
}

// PlaceEntries adds one selected text strip per entry on channel.
func (p *Project) PlaceEntries(entries []PlacedEntry, channel int) error {
	if channel < MinChannel || channel > MaxChannel {
		return fmt.Errorf(
			"channel %d out of range (%d-%d)",
			channel,
			MinChannel,
			MaxChannel,
		)
	}

	for _, e := range entries {
		if e.EndFrame < e.StartFrame {
			return fmt.Errorf(
				"entry %q ends at frame %d before its start %d",
				e.Name,
				e.EndFrame,
				e.StartFrame,
			)
		}
	}

	for _, e := range entries {
		var style *Style
		if e.Style != nil {
			s := *e.Style
			style = &s
		}
		p.Strips = append(p.Strips, Strip{
			Name:       e.Name,
			Type:       StripText,
			Channel:    channel,
			FrameStart: e.StartFrame,
			FrameEnd:   e.EndFrame,
			Text:       e.Text,
			Selected:   true,
			Style:      style,
		})
	}

	return nil
}

// SelectedEntries returns the selected text strips in project order.
func (p *Project) SelectedEntries() ([]PlacedEntry, error) {
	var entries []PlacedEntry
	for _, s := range p.Strips {
		if !s.Selected || s.Type != StripText {
			continue
		}
		entries = append(entries, PlacedEntry{
			Name:       s.Name,
			StartFrame: s.FrameStart,
			EndFrame:   s.FrameEnd,
			Text:       s.Text,
			Channel:    s.Channel,
			Style:      s.Style,
		})
	}
	return entries, nil
}

// SelectChannel makes the selection exactly the text strips on channel.
func (p *Project) SelectChannel(channel int) {
	for i := range p.Strips {
		s := &p.Strips[i]
		s.Selected = s.Type == StripText && s.Channel == channel
	}
}

func (p *Project) EffectiveFPS() (float64, error) {
	if p.FrameRate.IsZero() {
		return 0, ErrNoFrameRate
	}
	return p.FrameRate.Float(), nil
}

// SourceMedia returns the file behind the first movie strip, if any.
func (p *Project) SourceMedia() string {
	for _, s := range p.Strips {
		if s.Type == StripMovie && s.Filepath != "" {
			return s.Filepath
		}
	}
	return ""
}
