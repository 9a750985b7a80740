package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

// wavBytes builds a 16-bit mono PCM WAV file holding n samples of a ramp.
func wavBytes(sampleRate, n int) []byte {
	var buf bytes.Buffer
	dataLen := n * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for i := 0; i < n; i++ {
		binary.Write(&buf, binary.LittleEndian, int16(i%2000-1000))
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"flac", []byte("fLaC\x00\x00\x00\x22"), KindFLAC},
		{"wav", wavBytes(8000, 4), KindWAV},
		{"riff but not wave", []byte("RIFF\x00\x00\x00\x00AVI LIST"), KindUnknown},
		{"id3", []byte("ID3\x04\x00"), KindMP3},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, KindMP3},
		{"text", []byte("EOF"), KindUnknown},
		{"empty", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_Extension(t *testing.T) {
	if KindFLAC.Extension() != ".flac" || KindWAV.Extension() != ".wav" || KindMP3.Extension() != ".mp3" {
		t.Error("unexpected extension")
	}
	if KindUnknown.Extension() != ".bin" {
		t.Errorf("unknown extension = %q", KindUnknown.Extension())
	}
}

func TestDecode_WAV(t *testing.T) {
	data := wavBytes(8000, 8000)

	buf, err := Decode(3, data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if buf.Index != 3 {
		t.Errorf("Index = %d, want 3", buf.Index)
	}
	if buf.Kind != KindWAV {
		t.Errorf("Kind = %v, want wav", buf.Kind)
	}
	if buf.Duration != time.Second {
		t.Errorf("Duration = %v, want 1s", buf.Duration)
	}
	if buf.PCM.Len() != 8000 {
		t.Errorf("PCM.Len() = %d, want 8000", buf.PCM.Len())
	}

	// Streamer can be taken more than once and covers the whole buffer.
	for i := 0; i < 2; i++ {
		if n := buf.Streamer().Len(); n != 8000 {
			t.Errorf("Streamer().Len() = %d, want 8000", n)
		}
	}
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode(1, []byte("definitely not audio"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode() error = %v, want ErrUnknownFormat", err)
	}
}

func TestDecode_CorruptWAV(t *testing.T) {
	zeroChannels := wavBytes(8000, 100)
	binary.LittleEndian.PutUint16(zeroChannels[22:], 0)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "truncated header", data: wavBytes(8000, 100)[:16]},
		{name: "zero sample rate", data: wavBytes(0, 100), want: ErrInvalidFormat},
		{name: "zero channels", data: zeroChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(1, tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestQueue_FIFO(t *testing.T) {
	var q Queue
	q = q.Push(&Buffer{Index: 1, Duration: time.Second})
	q = q.Push(&Buffer{Index: 2, Duration: 2 * time.Second})
	q = q.Push(&Buffer{Index: 3, Duration: 500 * time.Millisecond})

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if q.Duration() != 3500*time.Millisecond {
		t.Errorf("Duration() = %v", q.Duration())
	}

	var order []int
	for {
		rest, head, ok := q.Pop()
		if !ok {
			break
		}
		order = append(order, head.Index)
		q = rest
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("pop order = %v, want [1 2 3]", order)
	}
}

func TestQueue_ValueSemantics(t *testing.T) {
	var q Queue
	q = q.Push(&Buffer{Index: 1})
	snapshot := q

	q = q.Push(&Buffer{Index: 2})
	q, _, _ = q.Pop()

	if snapshot.Len() != 1 || snapshot.Indexes()[0] != 1 {
		t.Errorf("snapshot changed: %v", snapshot.Indexes())
	}
	if got := q.Indexes(); len(got) != 1 || got[0] != 2 {
		t.Errorf("queue = %v, want [2]", got)
	}
}

func TestClockOutput_EndsAfterDuration(t *testing.T) {
	out := NewClockOutput()
	defer out.Close()

	done := make(chan time.Time, 1)
	start := time.Now()
	if err := out.Play(&Buffer{Duration: 20 * time.Millisecond}, func() { done <- time.Now() }); err != nil {
		t.Fatal(err)
	}

	select {
	case end := <-done:
		if end.Sub(start) < 20*time.Millisecond {
			t.Errorf("voice ended after %v, before its duration", end.Sub(start))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onEnd was never called")
	}
}

func TestClockOutput_StopSuppressesEnd(t *testing.T) {
	out := NewClockOutput()
	defer out.Close()

	called := make(chan struct{}, 1)
	if err := out.Play(&Buffer{Duration: 50 * time.Millisecond}, func() { called <- struct{}{} }); err != nil {
		t.Fatal(err)
	}
	out.Stop()

	select {
	case <-called:
		t.Error("onEnd called after Stop")
	case <-time.After(150 * time.Millisecond):
	}
}
