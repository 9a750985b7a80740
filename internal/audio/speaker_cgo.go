//go:build (linux && cgo) || windows || darwin

package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether device playback is supported in this build.
const AudioAvailable = true

// speakerOutput plays buffers through the system audio device using beep.
type speakerOutput struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	closed     bool
}

// NewSpeakerOutput opens the audio device at the given sample rate. Buffers
// with another rate are resampled on the fly.
func NewSpeakerOutput(sampleRate int) (Output, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &speakerOutput{sampleRate: sr}, nil
}

func (o *speakerOutput) Play(buf *Buffer, onEnd func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOutputClosed
	}

	var s beep.Streamer = buf.Streamer()
	if buf.Format.SampleRate != o.sampleRate {
		s = beep.Resample(4, buf.Format.SampleRate, o.sampleRate, s)
	}

	speaker.Play(beep.Seq(s, beep.Callback(func() {
		// The speaker lock is held here; onEnd may start the next voice.
		if onEnd != nil {
			go onEnd()
		}
	})))
	return nil
}

func (o *speakerOutput) Stop() {
	speaker.Clear()
}

func (o *speakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	speaker.Clear()
	speaker.Close()
	return nil
}
