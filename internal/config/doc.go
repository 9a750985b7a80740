// Package config provides configuration management for wavstream.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values matching the stream server's protocol
//   - Validation before a session is started
//   - Building the structured logger
//   - Conversion to RecordingConfig for the model package
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Streams to ws://localhost:8080/stream
//	// 512 KiB chunks, "EOF" terminator
//	// Only audio/wav is accepted
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Logging
//
//	logger := settings.NewLogger(os.Stderr)
//	logger.Info("session started", slog.String("file", name))
package config
