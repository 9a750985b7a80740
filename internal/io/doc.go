// Package ioutils provides file system utilities.
//
// This package contains functions for:
//   - Reading a source file once into memory
//   - Writing data, creating parent directories as needed
//   - Directory creation
//
// # File Operations
//
//	// Read the file to upload
//	data, err := ioutils.ReadFile(ctx, "/path/to/voice.wav")
//
//	// Write a received fragment
//	err := ioutils.WriteFile(ctx, "/music/wavstream/voice/voice-001.flac", data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// Functions taking a context.Context check it before touching the disk;
// the file operations themselves are not interruptible.
package ioutils
