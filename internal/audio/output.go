package audio

import (
	"errors"
	"sync"
	"time"
)

var ErrOutputClosed = errors.New("audio output closed")

// Output plays decoded buffers on a device.
//
// Every Play call creates a fresh single-use voice for one buffer; onEnd
// runs on its own goroutine once the voice finishes naturally. Stop
// silences all voices without calling their onEnd.
type Output interface {
	Play(buf *Buffer, onEnd func()) error
	Stop()
	Close() error
}

// clockOutput emulates a device by waiting for each buffer's duration.
type clockOutput struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewClockOutput returns an Output that produces no sound but ends each
// voice after the buffer's duration, as a real device would.
func NewClockOutput() Output {
	return &clockOutput{timers: make(map[*time.Timer]struct{})}
}

func (o *clockOutput) Play(buf *Buffer, onEnd func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var t *time.Timer
	t = time.AfterFunc(buf.Duration, func() {
		o.mu.Lock()
		_, live := o.timers[t]
		delete(o.timers, t)
		o.mu.Unlock()
		if live && onEnd != nil {
			onEnd()
		}
	})
	o.timers[t] = struct{}{}
	return nil
}

func (o *clockOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for t := range o.timers {
		t.Stop()
		delete(o.timers, t)
	}
}

func (o *clockOutput) Close() error {
	o.Stop()
	return nil
}

// NewOutput returns the device output for sampleRate, or a clock output
// when mute is set or no device backend is compiled in.
func NewOutput(sampleRate int, mute bool) (Output, error) {
	if mute || !AudioAvailable {
		return NewClockOutput(), nil
	}
	return NewSpeakerOutput(sampleRate)
}
