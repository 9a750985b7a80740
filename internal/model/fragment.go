package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Fragment is one audio message returned by the server, as saved to disk.
//
// Example:
//
//	cfg := &RecordingConfig{FragmentFileNameFormat: "{name}-{index}"}
//	frag := NewFragment(rec, 1, 2.5, ".flac", cfg)
//	// frag.Path = "/music/wavstream/voice/voice-001.flac"
type Fragment struct {
	// Recording is a reference to the parent recording.
	Recording *Recording

	// Index is the 1-based arrival position of the fragment.
	Index int

	// Duration is the decoded length in seconds.
	Duration float64

	// Extension is the container extension including the dot, e.g. ".flac".
	Extension string

	// Path is the computed local file path.
	Path string
}

// NewFragment creates a Fragment with its computed path.
func NewFragment(rec *Recording, index int, duration float64, ext string, cfg *RecordingConfig) *Fragment {
	frag := &Fragment{
		Recording: rec,
		Index:     index,
		Duration:  duration,
		Extension: ext,
	}

	frag.Path = frag.parseFilePath(cfg)

	return frag
}

// Title is the display title used in playlists and tags.
func (f *Fragment) Title() string {
	return fmt.Sprintf("%s (part %d)", f.Recording.Name, f.Index)
}

func (f *Fragment) parseFilePath(cfg *RecordingConfig) string {
	fileName := f.parseFileName(cfg)
	filePath := filepath.Join(f.Recording.Path, fileName+f.Extension)

	// Windows MAX_PATH
	if len(filePath) >= 260 {
		maxLen := 11 - len(f.Extension)
		if maxLen > 0 && maxLen < len(fileName) {
			filePath = filepath.Join(f.Recording.Path, fileName[:maxLen]+f.Extension)
		}
	}

	return filePath
}

func (f *Fragment) parseFileName(cfg *RecordingConfig) string {
	fileName := f.Recording.expand(cfg.FragmentFileNameFormat)
	fileName = strings.ReplaceAll(fileName, "{index}", fmt.Sprintf("%03d", f.Index))
	return sanitizeFileName(fileName)
}
