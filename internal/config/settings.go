package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/wavstream/internal/model"
)

const (
	// DefaultEndpoint is the conversion server the client streams to.
	DefaultEndpoint = "ws://localhost:8080/stream"

	// DefaultChunkSize is the size of each binary frame sent during upload.
	DefaultChunkSize = 512 * 1024

	// DefaultMIMEType is the only file type accepted for upload.
	DefaultMIMEType = "audio/wav"

	// DefaultTerminator is the text frame that marks the end of the upload.
	DefaultTerminator = "EOF"
)

// ErrInvalidSettings is wrapped by every error returned from Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds all configuration options.
type Settings struct {
	// Connection settings
	Endpoint           string `json:"endpoint"`
	HandshakeTimeoutMs int    `json:"handshake_timeout_ms"` // 0 disables the timeout
	ReadBufferSize     int    `json:"read_buffer_size"`
	WriteBufferSize    int    `json:"write_buffer_size"`
	MaxMessageSize     int64  `json:"max_message_size"` // 0 means unlimited

	// Upload settings
	ChunkSize        int    `json:"chunk_size"`
	ExpectedMIMEType string `json:"expected_mime_type"`
	Terminator       string `json:"terminator"`

	// Playback settings
	ProgressIntervalMs int  `json:"progress_interval_ms"`
	DecodeWorkers      int  `json:"decode_workers"`
	SampleRate         int  `json:"sample_rate"`
	Mute               bool `json:"mute"`

	// Recording settings
	SaveFragments          bool   `json:"save_fragments"`
	RecordingsPath         string `json:"recordings_path"`
	FragmentFileNameFormat string `json:"fragment_file_name_format"`
	PlaylistFileNameFormat string `json:"playlist_file_name_format"`
	PlaylistFormat         string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended            bool   `json:"m3u_extended"`
	ModifyTags             bool   `json:"modify_tags"`

	// Diagnostics
	LogLevel string `json:"log_level"` // debug, info, warn, error
	LogFile  string `json:"log_file"`
	Notify   bool   `json:"notify"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Endpoint:           DefaultEndpoint,
		HandshakeTimeoutMs: 0,
		ReadBufferSize:     4 * 1024 * 1024,
		WriteBufferSize:    4 * 1024 * 1024,
		MaxMessageSize:     0,

		ChunkSize:        DefaultChunkSize,
		ExpectedMIMEType: DefaultMIMEType,
		Terminator:       DefaultTerminator,

		ProgressIntervalMs: 100,
		DecodeWorkers:      2,
		SampleRate:         44100,
		Mute:               false,

		SaveFragments:          false,
		RecordingsPath:         filepath.Join(homeDir, "Music", "wavstream", "{name}"),
		FragmentFileNameFormat: "{name}-{index}",
		PlaylistFileNameFormat: "{name}",
		PlaylistFormat:         "m3u",
		M3UExtended:            true,
		ModifyTags:             true,

		LogLevel: "info",
		LogFile:  "",
		Notify:   false,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that would prevent a session from running.
func (s *Settings) Validate() error {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint: %v", ErrInvalidSettings, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: endpoint scheme must be ws or wss, got %q", ErrInvalidSettings, u.Scheme)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidSettings)
	}
	if s.ExpectedMIMEType == "" {
		return fmt.Errorf("%w: expected_mime_type is empty", ErrInvalidSettings)
	}
	if s.Terminator == "" {
		return fmt.Errorf("%w: terminator is empty", ErrInvalidSettings)
	}
	if s.ProgressIntervalMs <= 0 {
		return fmt.Errorf("%w: progress_interval_ms must be positive", ErrInvalidSettings)
	}
	if s.DecodeWorkers <= 0 {
		return fmt.Errorf("%w: decode_workers must be positive", ErrInvalidSettings)
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive", ErrInvalidSettings)
	}
	if _, ok := playlistFormats[s.PlaylistFormat]; !ok {
		return fmt.Errorf("%w: playlist_format must be m3u, pls, wpl or zpl, got %q", ErrInvalidSettings, s.PlaylistFormat)
	}
	return nil
}

// ProgressInterval returns the playback progress refresh period.
func (s *Settings) ProgressInterval() time.Duration {
	return time.Duration(s.ProgressIntervalMs) * time.Millisecond
}

// HandshakeTimeout returns the WebSocket handshake timeout, zero meaning none.
func (s *Settings) HandshakeTimeout() time.Duration {
	return time.Duration(s.HandshakeTimeoutMs) * time.Millisecond
}

// playlistFormats maps the accepted playlist_format values.
var playlistFormats = map[string]model.PlaylistFormat{
	"m3u": model.PlaylistFormatM3U,
	"pls": model.PlaylistFormatPLS,
	"wpl": model.PlaylistFormatWPL,
	"zpl": model.PlaylistFormatZPL,
}

// ToRecordingConfig converts settings to RecordingConfig. Validate rejects
// unknown playlist formats, so the M3U fallback only covers unvalidated
// settings.
func (s *Settings) ToRecordingConfig() *model.RecordingConfig {
	pf, ok := playlistFormats[s.PlaylistFormat]
	if !ok {
		pf = model.PlaylistFormatM3U
	}

	return &model.RecordingConfig{
		RecordingsPath:         s.RecordingsPath,
		FragmentFileNameFormat: s.FragmentFileNameFormat,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         pf,
	}
}
