package stream

import (
	"time"

	"github.com/google/uuid"
	"github.com/handiism/wavstream/internal/audio"
	"github.com/handiism/wavstream/internal/model"
	"github.com/samber/lo"
)

// Phase is the playback state of a session.
type Phase int

const (
	// PhaseIdle means no buffer has been played yet.
	PhaseIdle Phase = iota

	// PhasePlaying means a voice is active.
	PhasePlaying

	// PhaseFinished means the queue ran dry after playback started. Only a
	// new session leaves this phase.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "idle"
	}
}

// State is the single authoritative value describing one upload and
// playback session. Every method returns a new State and leaves the
// receiver untouched.
type State struct {
	SessionID uuid.UUID
	Details   *model.AudioDetails
	StartedAt time.Time

	Phase Phase

	// Uploading is set when the session starts and cleared only when the
	// connection fails or closes.
	Uploading      bool
	Connected      bool
	UploadComplete bool
	Closed         bool

	BytesSent   int64
	BytesTotal  int64
	ChunksSent  int
	ChunksTotal int

	FragmentsReceived int
	FragmentsPlayed   int
	FragmentsDropped  int

	// Pending counts fragments received but not yet decoded and released.
	Pending int

	Queue   audio.Queue
	Current *audio.Buffer

	TotalDuration  time.Duration
	PlayedDuration time.Duration

	// Progress is the playback percentage in [0,100].
	Progress float64

	LastError string
}

// NewState starts a session with every accumulator at zero.
func NewState(id uuid.UUID, details *model.AudioDetails, chunkSize int, now time.Time) State {
	return State{
		SessionID:   id,
		Details:     details,
		StartedAt:   now,
		Phase:       PhaseIdle,
		Uploading:   true,
		BytesTotal:  details.Size,
		ChunksTotal: model.ChunkCount(details.Size, chunkSize),
	}
}

// Active reports whether a session has been started.
func (s State) Active() bool {
	return s.SessionID != uuid.Nil
}

func (s State) ConnectionOpened() State {
	s.Connected = true
	return s
}

// ChunkSent records the cumulative number of bytes written so far.
func (s State) ChunkSent(sent int64) State {
	s.ChunksSent++
	s.BytesSent = sent
	return s
}

func (s State) UploadFinished() State {
	s.UploadComplete = true
	return s
}

// ConnectionFailed records a connection-level error. Nothing is retried.
func (s State) ConnectionFailed(err error) State {
	s.Uploading = false
	s.Connected = false
	s.Closed = true
	if err != nil {
		s.LastError = err.Error()
	}
	return s
}

// ConnectionClosed clears the uploading flag whatever the reason for the close.
func (s State) ConnectionClosed() State {
	s.Uploading = false
	s.Connected = false
	s.Closed = true
	return s
}

func (s State) FragmentReceived() State {
	s.FragmentsReceived++
	s.Pending++
	return s
}

// FragmentDropped releases a fragment that failed to decode.
func (s State) FragmentDropped(err error) State {
	s.Pending = max(s.Pending-1, 0)
	s.FragmentsDropped++
	if err != nil {
		s.LastError = err.Error()
	}
	return s
}

// Enqueue appends a decoded buffer and adds its duration to the total. If
// nothing is playing, the head of the queue is started and returned as
// play. accepted is false when playback already finished; the buffer is
// then counted as dropped.
func (s State) Enqueue(buf *audio.Buffer) (next State, play *audio.Buffer, accepted bool) {
	s.Pending = max(s.Pending-1, 0)

	if s.Phase == PhaseFinished {
		s.FragmentsDropped++
		return s, nil, false
	}

	s.Queue = s.Queue.Push(buf)
	s.TotalDuration += buf.Duration

	if s.Current != nil {
		return s, nil, true
	}
	next, play = s.startNext()
	return next, play, true
}

// VoiceEnded handles the natural end of the voice playing the buffer with
// the given index and starts the next one, if any. Ends for any other
// buffer are ignored.
func (s State) VoiceEnded(index int) (State, *audio.Buffer) {
	if s.Current == nil || s.Current.Index != index {
		return s, nil
	}
	s.Current = nil
	s.FragmentsPlayed++
	return s.startNext()
}

// startNext pops the queue head into the single active slot. The played
// accumulator grows by the buffer's full duration right away. An empty
// queue after playback started finishes the session at exactly 100%.
func (s State) startNext() (State, *audio.Buffer) {
	rest, head, ok := s.Queue.Pop()
	if !ok {
		if s.Phase == PhasePlaying {
			s.Phase = PhaseFinished
			s.Progress = 100
		}
		return s, nil
	}

	s.Queue = rest
	s.Current = head
	s.Phase = PhasePlaying
	s.PlayedDuration += head.Duration
	return s, head
}

// Tick recomputes the published progress from the two accumulators. The
// value never decreases within a session.
func (s State) Tick() State {
	if s.TotalDuration <= 0 {
		return s
	}
	p := float64(s.PlayedDuration) / float64(s.TotalDuration) * 100
	s.Progress = max(s.Progress, lo.Clamp(p, 0, 100))
	return s
}

// Settled reports whether nothing more can happen in the session: the
// connection is gone and no fragment is decoding, queued or playing.
func (s State) Settled() bool {
	return s.Active() && s.Closed && s.Pending == 0 && s.Current == nil && s.Queue.Len() == 0
}

// UploadPercent is the share of the file written to the connection.
func (s State) UploadPercent() float64 {
	if s.BytesTotal <= 0 {
		if s.UploadComplete {
			return 100
		}
		return 0
	}
	return lo.Clamp(float64(s.BytesSent)/float64(s.BytesTotal)*100, 0, 100)
}
