package ioutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile reads a whole file into memory.
//
// The file is read once; callers slice the returned bytes rather than
// re-reading. An error is returned without touching the disk if ctx is
// already cancelled.
//
// Example:
//
//	data, err := ReadFile(ctx, "/recordings/voice.wav")
func ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to a file, creating its parent directories and
// the file itself if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	playlistContent := []byte("#EXTM3U\n...")
//	err := WriteFile(ctx, "/music/wavstream/voice/voice.m3u", playlistContent)
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/music/wavstream/voice")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
