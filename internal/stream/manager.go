package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/wavstream/internal/audio"
	"github.com/handiism/wavstream/internal/config"
	ioutils "github.com/handiism/wavstream/internal/io"
	"github.com/handiism/wavstream/internal/model"
	"github.com/handiism/wavstream/internal/ws"
	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned by Stream once Run has returned.
var ErrStopped = errors.New("stream manager stopped")

// Manager runs upload and playback sessions, one at a time.
//
// All session state is owned by the goroutine executing Run. Network,
// decode and playback goroutines report to it through events tagged with
// their session id, so events from a replaced session are ignored.
type Manager struct {
	settings   *config.Settings
	client     *ws.Client
	output     audio.Output
	logger     *slog.Logger
	onProgress func(ProgressEvent)

	events chan event
	done   chan struct{}

	mu      sync.RWMutex
	state   State
	settled chan struct{}

	// Owned by Run.
	sessionCtx context.Context
	cancel     context.CancelFunc
	seq        *sequencer
	recorder   *recorder
	ticker     *time.Ticker
	notified   bool
}

// NewManager creates a Manager playing through output. A nil logger
// discards diagnostics.
func NewManager(settings *config.Settings, output audio.Output, logger *slog.Logger, onProgress func(ProgressEvent)) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	settled := make(chan struct{})
	close(settled)

	return &Manager{
		settings:   settings,
		client:     ws.NewClient(settings),
		output:     output,
		logger:     logger,
		onProgress: onProgress,
		events:     make(chan event, 64),
		done:       make(chan struct{}),
		settled:    settled,
		notified:   true,
	}
}

// Run processes session events until ctx is cancelled. Stream only makes
// progress while Run is executing.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)
	defer m.endSession()

	for {
		var tick <-chan time.Time
		if m.ticker != nil {
			tick = m.ticker.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-m.events:
			m.handle(ctx, ev)
		case <-tick:
			m.update(State.Tick)
		}
	}
}

// Stream validates the file at path and starts a new session for it,
// replacing any session in progress. It returns once the new session is
// the current one; use Wait to block until it settles.
//
// A file of the wrong type returns ErrInvalidFileType and leaves the
// current session untouched.
func (m *Manager) Stream(ctx context.Context, path string) (uuid.UUID, error) {
	details, err := Inspect(path, m.settings.ExpectedMIMEType)
	if err != nil {
		if errors.Is(err, ErrInvalidFileType) {
			m.progress(ProgressEvent{Message: "Please upload a valid WAV file.", Level: LevelError})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading %s: %v", path, err), Level: LevelError})
		}
		return uuid.Nil, err
	}

	b := beginEvent{
		sessionEvent: sessionEvent{id: uuid.New()},
		path:         path,
		details:      details,
		started:      make(chan struct{}),
	}

	select {
	case m.events <- b:
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	case <-m.done:
		return uuid.Nil, ErrStopped
	}

	select {
	case <-b.started:
		return b.id, nil
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	case <-m.done:
		return uuid.Nil, ErrStopped
	}
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Wait blocks until the current session settles, Run returns or ctx is
// done, and returns the state at that point.
func (m *Manager) Wait(ctx context.Context) (State, error) {
	m.mu.RLock()
	settled := m.settled
	m.mu.RUnlock()

	select {
	case <-settled:
	case <-m.done:
	case <-ctx.Done():
		return m.Snapshot(), ctx.Err()
	}
	return m.Snapshot(), nil
}

func (m *Manager) handle(ctx context.Context, ev event) {
	if b, ok := ev.(beginEvent); ok {
		m.begin(ctx, b)
		return
	}

	if ev.session() != m.state.SessionID {
		m.logger.Debug("dropping stale event", slog.String("session", ev.session().String()))
		return
	}

	switch e := ev.(type) {
	case connectedEvent:
		m.update(State.ConnectionOpened)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Connected to %s", m.settings.Endpoint), Level: LevelVerbose})

	case chunkSentEvent:
		m.update(func(s State) State { return s.ChunkSent(e.sent) })

	case uploadedEvent:
		m.update(State.UploadFinished)
		s := m.state
		m.progress(ProgressEvent{Message: fmt.Sprintf("Uploaded %d chunks (%d bytes), waiting for audio", s.ChunksSent, s.BytesSent), Level: LevelInfo})

	case fragmentEvent:
		m.update(State.FragmentReceived)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Received fragment %d (%d bytes)", e.index, e.size), Level: LevelVerbose})

	case decodedEvent:
		for _, r := range m.seq.Add(e.result) {
			m.release(r)
		}

	case voiceEndedEvent:
		m.advance(func(s State) (State, *audio.Buffer) { return s.VoiceEnded(e.index) })

	case closedEvent:
		if e.err != nil {
			m.update(func(s State) State { return s.ConnectionFailed(e.err) })
			m.logger.Error("connection error", slog.String("session", e.id.String()), slog.Any("err", e.err))
			m.progress(ProgressEvent{Message: fmt.Sprintf("Connection error: %v", e.err), Level: LevelError})
		} else {
			m.update(State.ConnectionClosed)
			m.progress(ProgressEvent{Message: "Connection closed", Level: LevelVerbose})
		}
	}

	m.checkSettled()
}

func (m *Manager) begin(ctx context.Context, b beginEvent) {
	m.endSession()

	now := time.Now()
	m.sessionCtx, m.cancel = context.WithCancel(ctx)
	m.seq = newSequencer()
	m.recorder = nil
	if m.settings.SaveFragments {
		m.recorder = newRecorder(m.settings, b.details.Name, b.id.String(), now)
	}

	m.mu.Lock()
	m.state = NewState(b.id, b.details, m.settings.ChunkSize, now)
	m.settled = make(chan struct{})
	m.notified = false
	m.mu.Unlock()
	close(b.started)

	m.logger.Info("session started",
		slog.String("session", b.id.String()),
		slog.String("file", b.details.Name),
		slog.Int64("size", b.details.Size),
		slog.String("endpoint", m.settings.Endpoint))
	m.progress(ProgressEvent{Message: fmt.Sprintf("Streaming %s (%s MB)", b.details.Name, b.details.SizeMiB()), Level: LevelInfo})

	go m.runSession(m.sessionCtx, b.id, b.path)
}

// endSession tears down the current session: its connection is closed,
// output is silenced and anyone waiting on it is released.
func (m *Manager) endSession() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.output.Stop()
	m.stopTicker()

	if !m.notified {
		m.notified = true
		close(m.settled)
	}
}

// runSession uploads the file and receives fragments until the
// connection closes. Fragments are decoded concurrently; the sequencer
// restores their arrival order.
func (m *Manager) runSession(ctx context.Context, id uuid.UUID, path string) {
	base := sessionEvent{id: id}

	data, err := ioutils.ReadFile(ctx, path)
	if err != nil {
		m.send(closedEvent{base, err})
		return
	}

	conn, err := m.client.Dial(ctx, m.settings.Endpoint)
	if err != nil {
		m.send(closedEvent{base, err})
		return
	}
	defer conn.Close()
	m.send(connectedEvent{base})

	decoders := new(errgroup.Group)
	decoders.SetLimit(m.settings.DecodeWorkers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := conn.Upload(gctx, data, m.settings.ChunkSize, m.settings.Terminator, func(sent, total int64) {
			m.send(chunkSentEvent{base, sent})
		})
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		m.send(uploadedEvent{base})
		return nil
	})
	g.Go(func() error {
		index := 0
		return conn.Receive(gctx, func(fragment []byte) {
			index++
			i := index
			m.send(fragmentEvent{base, i, len(fragment)})
			decoders.Go(func() error {
				buf, err := decodeFragment(i, fragment)
				m.send(decodedEvent{base, decodeResult{index: i, buf: buf, err: err}})
				return nil
			})
		}, func(text string) {
			m.logger.Debug("ignoring text message", slog.String("session", id.String()), slog.String("text", text))
		})
	})

	err = g.Wait()
	decoders.Wait()
	m.send(closedEvent{base, err})
}

// decodeFragment decodes one fragment, turning a decoder panic into an
// error so a malformed fragment only drops itself.
func decodeFragment(index int, data []byte) (buf *audio.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("decode fragment %d: panic: %v", index, r)
		}
	}()
	return audio.Decode(index, data)
}

// release handles one decode result in arrival order.
func (m *Manager) release(r decodeResult) {
	if r.err != nil {
		m.update(func(s State) State { return s.FragmentDropped(r.err) })
		m.logger.Error("decode fragment", slog.Int("index", r.index), slog.Any("err", r.err))
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping fragment %d: %v", r.index, r.err), Level: LevelWarning})
		return
	}

	accepted := true
	m.advance(func(s State) (State, *audio.Buffer) {
		next, play, ok := s.Enqueue(r.buf)
		accepted = ok
		return next, play
	})
	if !accepted {
		m.logger.Warn("late fragment", slog.Int("index", r.index))
		m.progress(ProgressEvent{Message: fmt.Sprintf("Fragment %d arrived after playback finished", r.index), Level: LevelWarning})
		return
	}

	if m.recorder != nil {
		frag, err := m.recorder.Save(m.sessionCtx, r.buf)
		switch {
		case err != nil:
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving fragment %d: %v", r.index, err), Level: LevelWarning})
		case frag != nil:
			m.progress(ProgressEvent{Message: fmt.Sprintf("Saved %s", frag.Path), Level: LevelVerbose})
		}
	}
}

// advance applies a playback transition and starts the voice it asks for.
// A voice that cannot start is treated as ended so the queue keeps
// draining.
func (m *Manager) advance(step func(State) (State, *audio.Buffer)) {
	m.mu.Lock()
	before := m.state.Phase
	next, play := step(m.state)
	m.state = next
	m.mu.Unlock()

	for play != nil {
		err := m.play(play)
		if err == nil {
			break
		}
		m.logger.Error("play fragment", slog.Int("index", play.Index), slog.Any("err", err))
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error playing fragment %d: %v", play.Index, err), Level: LevelError})

		m.mu.Lock()
		m.state, play = m.state.VoiceEnded(play.Index)
		m.mu.Unlock()
	}

	if m.state.Current != nil {
		m.startTicker()
	} else {
		m.stopTicker()
	}

	if before != PhaseFinished && m.state.Phase == PhaseFinished {
		m.progress(ProgressEvent{Message: "Finished playing audio.", Level: LevelSuccess})
	}
}

func (m *Manager) play(buf *audio.Buffer) error {
	id, index := m.state.SessionID, buf.Index
	m.progress(ProgressEvent{Message: fmt.Sprintf("Playing fragment %d (%.2fs)", index, buf.Duration.Seconds()), Level: LevelVerbose})
	return m.output.Play(buf, func() {
		m.send(voiceEndedEvent{sessionEvent{id: id}, index})
	})
}

func (m *Manager) checkSettled() {
	if m.notified || !m.state.Settled() {
		return
	}
	m.notified = true

	if m.recorder != nil {
		path, err := m.recorder.Finish(m.sessionCtx)
		switch {
		case err != nil:
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		case path != "":
			m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", path), Level: LevelSuccess})
		}
	}

	s := m.state
	m.logger.Info("session settled",
		slog.String("session", s.SessionID.String()),
		slog.String("phase", s.Phase.String()),
		slog.Int("fragments", s.FragmentsReceived),
		slog.Int("dropped", s.FragmentsDropped),
		slog.Duration("played", s.PlayedDuration))
	if s.Phase == PhaseIdle {
		m.progress(ProgressEvent{Message: "No audio was received", Level: LevelWarning})
	}

	close(m.settled)
}

func (m *Manager) update(fn func(State) State) {
	m.mu.Lock()
	m.state = fn(m.state)
	m.mu.Unlock()
}

func (m *Manager) startTicker() {
	if m.ticker == nil {
		m.ticker = time.NewTicker(m.settings.ProgressInterval())
	}
}

func (m *Manager) stopTicker() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

// send delivers ev to Run, giving up once Run has returned.
func (m *Manager) send(ev event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// Details describes the file of the current session, or nil.
func (m *Manager) Details() *model.AudioDetails {
	return m.Snapshot().Details
}
