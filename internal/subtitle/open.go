package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// parsed SubRip file
type SRTFile struct {
	Path    string
	Entries []Entry
}

// Open parses the SubRip file at path with p (nil means the default parser).
func Open(path string, p *Parser) (*SRTFile, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".srt" {
		return nil, fmt.Errorf("unsupported subtitle format: %q (expected .srt)", ext)
	}
	if p == nil {
		p = &Parser{}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	entries, err := p.Parse(file)
	if err != nil {
		return nil, err
	}

	return &SRTFile{Path: path, Entries: entries}, nil
}

// Write renumbers the cues 1..N and writes them to path.
func (f *SRTFile) Write(path string) error {
	entries := make([]Entry, len(f.Entries))
	for i, entry := range f.Entries {
		entry.Index = i + 1
		entries[i] = entry
	}
	return WriteFile(path, entries)
}
