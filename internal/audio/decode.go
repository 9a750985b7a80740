package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

var (
	ErrUnknownFormat = errors.New("unrecognized audio format")
	ErrEmptyFragment = errors.New("fragment decoded to no samples")
	ErrInvalidFormat = errors.New("fragment header declares an unplayable format")
)

// Kind is the container format of a fragment.
type Kind int

const (
	KindUnknown Kind = iota
	KindFLAC
	KindWAV
	KindMP3
)

func (k Kind) String() string {
	switch k {
	case KindFLAC:
		return "flac"
	case KindWAV:
		return "wav"
	case KindMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// Extension returns the file extension for the kind, including the dot.
func (k Kind) Extension() string {
	if k == KindUnknown {
		return ".bin"
	}
	return "." + k.String()
}

// Sniff identifies the container from the leading magic bytes.
func Sniff(data []byte) Kind {
	switch {
	case len(data) >= 4 && string(data[:4]) == "fLaC":
		return KindFLAC
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return KindWAV
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return KindMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return KindMP3
	default:
		return KindUnknown
	}
}

// Buffer is one fully decoded fragment, ready to be played any number of
// times from memory.
type Buffer struct {
	// Index is the arrival position of the fragment within its session, from 1.
	Index int

	Kind     Kind
	Format   beep.Format
	Duration time.Duration

	// Data holds the undecoded fragment as received.
	Data []byte

	// PCM holds the decoded samples. Nil for synthetic buffers.
	PCM *beep.Buffer
}

// Streamer returns a fresh streamer over the whole buffer.
func (b *Buffer) Streamer() beep.StreamSeeker {
	return b.PCM.Streamer(0, b.PCM.Len())
}

// Decode decodes a complete fragment into memory.
func Decode(index int, data []byte) (*Buffer, error) {
	kind := Sniff(data)

	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch kind {
	case KindFLAC:
		s, format, err = flac.Decode(bytes.NewReader(data))
	case KindWAV:
		s, format, err = wav.Decode(bytes.NewReader(data))
	case KindMP3:
		s, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("fragment %d: %w", index, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s fragment %d: %w", kind, index, err)
	}
	defer s.Close()

	if format.SampleRate <= 0 || format.NumChannels <= 0 {
		return nil, fmt.Errorf("fragment %d (%d Hz, %d channels): %w", index, format.SampleRate, format.NumChannels, ErrInvalidFormat)
	}

	pcm := beep.NewBuffer(format)
	pcm.Append(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode %s fragment %d: %w", kind, index, err)
	}
	if pcm.Len() == 0 {
		return nil, fmt.Errorf("fragment %d: %w", index, ErrEmptyFragment)
	}

	return &Buffer{
		Index:    index,
		Kind:     kind,
		Format:   format,
		Duration: format.SampleRate.D(pcm.Len()),
		Data:     data,
		PCM:      pcm,
	}, nil
}
