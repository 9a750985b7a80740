package stream

import (
	"github.com/google/uuid"
	"github.com/handiism/wavstream/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a session progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// event is a message to the goroutine running the Manager.
type event interface {
	session() uuid.UUID
}

type sessionEvent struct {
	id uuid.UUID
}

func (e sessionEvent) session() uuid.UUID { return e.id }

type beginEvent struct {
	sessionEvent
	path    string
	details *model.AudioDetails
	started chan struct{}
}

type connectedEvent struct {
	sessionEvent
}

type chunkSentEvent struct {
	sessionEvent
	sent int64
}

type uploadedEvent struct {
	sessionEvent
}

type fragmentEvent struct {
	sessionEvent
	index int
	size  int
}

type decodedEvent struct {
	sessionEvent
	result decodeResult
}

type voiceEndedEvent struct {
	sessionEvent
	index int
}

// closedEvent ends the connection of a session. A nil err means the peer
// closed it.
type closedEvent struct {
	sessionEvent
	err error
}
