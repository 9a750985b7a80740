package ioutils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "frag-001.flac")

	if err := WriteFile(context.Background(), path, []byte("fLaC")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "fLaC" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "x")
	if err := WriteFile(ctx, path, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteFile() = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should not exist")
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile() = %v, want ErrNotExist", err)
	}
}
