package model

import (
	"fmt"
	"strings"
)

// bytesPerMiB converts a byte count to mebibytes.
const bytesPerMiB = 1024 * 1024

// AudioDetails is the display snapshot of a selected file.
type AudioDetails struct {
	Name      string
	Size      int64
	MIMEType  string
	Extension string
}

// NewAudioDetails describes a file. The extension is the text after the last
// dot of the name, or the whole name when it has no dot.
func NewAudioDetails(name string, size int64, mimeType string) *AudioDetails {
	ext := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i+1:]
	}
	return &AudioDetails{
		Name:      name,
		Size:      size,
		MIMEType:  mimeType,
		Extension: ext,
	}
}

// SizeMiB formats the size in MiB with two decimals.
func (d *AudioDetails) SizeMiB() string {
	return fmt.Sprintf("%.2f", float64(d.Size)/bytesPerMiB)
}
