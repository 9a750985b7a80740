package model

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Recording is the on-disk archive of the fragments returned during one
// session.
//
// Paths are computed when creating a recording via NewRecording, using
// placeholders like {name}, {session}, {year} etc.
//
// Example:
//
//	cfg := &RecordingConfig{
//	    RecordingsPath:         "/music/wavstream/{name}",
//	    PlaylistFileNameFormat: "{name}",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
//	rec := NewRecording("voice.wav", "3f2a9c1e", time.Now(), cfg)
//	// rec.Path = "/music/wavstream/voice"
type Recording struct {
	// Name is the source file name without its extension.
	Name string

	// SessionID identifies the session the fragments belong to.
	SessionID string

	// StartedAt is when the upload began.
	StartedAt time.Time

	// Fragments holds every saved fragment in playback order.
	Fragments []*Fragment

	// Path is the directory fragments are written to.
	Path string

	// PlaylistPath is the playlist file written once the session settles.
	PlaylistPath string
}

// RecordingConfig holds path formatting settings for recordings and fragments.
//
// Supported placeholders:
//   - {name} - source file name without extension
//   - {session} - session id
//   - {year}, {month}, {day} - session start date
//   - {index} - fragment index, fragment file names only
type RecordingConfig struct {
	// RecordingsPath is the directory template for one recording.
	RecordingsPath string

	// FragmentFileNameFormat is the fragment file name template (without extension).
	FragmentFileNameFormat string

	// PlaylistFileNameFormat is the playlist file name template (without extension).
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// NewRecording creates a Recording with computed paths.
func NewRecording(sourceFileName, sessionID string, startedAt time.Time, cfg *RecordingConfig) *Recording {
	rec := &Recording{
		Name:      strings.TrimSuffix(filepath.Base(sourceFileName), filepath.Ext(sourceFileName)),
		SessionID: sessionID,
		StartedAt: startedAt,
	}

	rec.Path = rec.parseFolderPath(cfg)
	rec.PlaylistPath = rec.parsePlaylistPath(cfg)

	return rec
}

// Duration returns the summed length of all saved fragments in seconds.
func (r *Recording) Duration() float64 {
	var total float64
	for _, f := range r.Fragments {
		total += f.Duration
	}
	return total
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatM3U:
		return ".m3u"
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// expand replaces the recording-level placeholders of a template.
func (r *Recording) expand(template string) string {
	s := template
	s = strings.ReplaceAll(s, "{year}", r.StartedAt.Format("2006"))
	s = strings.ReplaceAll(s, "{month}", r.StartedAt.Format("01"))
	s = strings.ReplaceAll(s, "{day}", r.StartedAt.Format("02"))
	s = strings.ReplaceAll(s, "{session}", r.SessionID)
	s = strings.ReplaceAll(s, "{name}", r.Name)
	return s
}

// parseFolderPath computes the recording folder path from the config template.
func (r *Recording) parseFolderPath(cfg *RecordingConfig) string {
	path := cfg.RecordingsPath
	path = strings.ReplaceAll(path, "{year}", sanitizeFileName(r.StartedAt.Format("2006")))
	path = strings.ReplaceAll(path, "{month}", sanitizeFileName(r.StartedAt.Format("01")))
	path = strings.ReplaceAll(path, "{day}", sanitizeFileName(r.StartedAt.Format("02")))
	path = strings.ReplaceAll(path, "{session}", sanitizeFileName(r.SessionID))
	path = strings.ReplaceAll(path, "{name}", sanitizeFileName(r.Name))

	// Windows MAX_PATH for folders
	if len(path) >= 248 {
		path = path[:247]
	}

	return path
}

// parsePlaylistPath computes the full playlist file path.
func (r *Recording) parsePlaylistPath(cfg *RecordingConfig) string {
	fileName := sanitizeFileName(r.expand(cfg.PlaylistFileNameFormat))
	ext := cfg.PlaylistFormat.Extension()
	filePath := filepath.Join(r.Path, fileName+ext)

	if len(filePath) >= 260 {
		maxLen := 11 - len(ext)
		if maxLen > 0 && maxLen < len(fileName) {
			filePath = filepath.Join(r.Path, fileName[:maxLen]+ext)
		}
	}

	return filePath
}

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	repeatedSpace    = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
func sanitizeFileName(name string) string {
	name = invalidNameChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
