package stream

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/handiism/wavstream/internal/model"
)

// ErrInvalidFileType is returned when the selected file is not of the
// expected audio type. No connection is opened in that case.
var ErrInvalidFileType = errors.New("please upload a valid WAV file")

// Inspect validates the file at path and describes it. The detected MIME
// type must equal expected exactly; parameters such as charset are
// ignored.
func Inspect(path, expected string) (*model.AudioDetails, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidFileType, path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect type of %s: %w", path, err)
	}

	detected, _, _ := strings.Cut(mtype.String(), ";")
	if detected != expected {
		return nil, fmt.Errorf("%w: %s is %s, want %s", ErrInvalidFileType, info.Name(), detected, expected)
	}

	return model.NewAudioDetails(info.Name(), info.Size(), detected), nil
}
