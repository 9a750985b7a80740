// Package tui provides a Bubble Tea terminal user interface for wavstream.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/handiism/wavstream/internal/audio"
	"github.com/handiism/wavstream/internal/config"
	"github.com/handiism/wavstream/internal/stream"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(1, 4)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateSelect State = iota
	StateAlert
	StateStreaming
	StateComplete
	StateError
)

// Status texts shown while a session runs.
const (
	StatusUploading = "Uploading and converting audio..."
	StatusPlaying   = "Playing audio in real-time..."
	StatusFinished  = "Finished playing audio."
	AlertInvalid    = "Please upload a valid WAV file."
)

const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   stream.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state      State
	filepicker filepicker.Model
	spinner    spinner.Model
	upload     progress.Model
	playback   progress.Model
	settings   *config.Settings
	logs       []LogEntry
	err        error
	verbose    bool

	ctx    context.Context
	cancel context.CancelFunc

	manager *stream.Manager
	events  chan stream.ProgressEvent

	// Last state polled from the manager
	session  uuid.UUID
	snapshot stream.State
	ticking  bool

	width  int
	height int
}

// NewModel creates a new TUI model playing through output.
func NewModel(settings *config.Settings, output audio.Output, logger *slog.Logger) Model {
	fp := filepicker.New()
	if dir, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = dir
	}
	fp.ShowPermissions = false
	fp.ShowSize = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	upload := progress.New(progress.WithSolidFill("#4ECDC4"))
	upload.Width = 50
	playback := progress.New(progress.WithDefaultGradient())
	playback.Width = 50

	events := make(chan stream.ProgressEvent, 256)
	manager := stream.NewManager(settings, output, logger, func(event stream.ProgressEvent) {
		// Never block the manager on a slow UI.
		select {
		case events <- event:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateSelect,
		filepicker: fp,
		spinner:    sp,
		upload:     upload,
		playback:   playback,
		settings:   settings,
		ctx:        ctx,
		cancel:     cancel,
		manager:    manager,
		events:     events,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.filepicker.Init(), m.spinner.Tick, m.runManager())
}

// Message types
type (
	// StreamStartedMsg is sent once a selected file was handed to the manager.
	StreamStartedMsg struct {
		Session uuid.UUID
		Err     error
	}

	// ManagerDoneMsg is sent when the manager loop exits.
	ManagerDoneMsg struct {
		Err error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		width := min(max(msg.Width-20, 20), 80)
		m.upload.Width = width
		m.playback.Width = width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "q":
			if m.state != StateAlert {
				m.cancel()
				return m, tea.Quit
			}

		case "esc":
			if m.state == StateStreaming {
				m.cancel()
				return m, tea.Quit
			}
			if m.state == StateAlert {
				m.state = StateSelect
				return m, nil
			}

		case "enter":
			if m.state == StateAlert {
				m.state = StateSelect
				return m, nil
			}

		case "r":
			if m.state == StateStreaming || m.state == StateComplete || m.state == StateError {
				m.state = StateSelect
				m.err = nil
				return m, m.filepicker.Init()
			}

		case "v":
			if m.state != StateAlert {
				m.verbose = !m.verbose
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StreamStartedMsg:
		switch {
		case errors.Is(msg.Err, stream.ErrInvalidFileType):
			m.state = StateAlert
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.session = msg.Session
			m.snapshot = m.manager.Snapshot()
			m.logs = nil
			m.state = StateStreaming
			if !m.ticking {
				m.ticking = true
				cmds = append(cmds, m.tickProgress())
			}
		}
		m.drainEvents()

	case ManagerDoneMsg:
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		}

	case TickMsg:
		m.drainEvents()
		m.snapshot = m.manager.Snapshot()
		if m.state == StateStreaming && m.snapshot.SessionID == m.session {
			if m.snapshot.Settled() {
				m.state = completedState(m.snapshot)
				if m.state == StateError {
					m.err = errors.New(m.snapshot.LastError)
				}
			}
		}
		// Keep polling while a session is live, even behind the file
		// picker. A new session restarts the tick.
		if m.state == StateStreaming || (m.snapshot.Active() && !m.snapshot.Settled()) {
			cmds = append(cmds, m.tickProgress())
		} else {
			m.ticking = false
		}
	}

	if m.state == StateSelect {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			cmds = append(cmds, m.startStream(path))
		}
	}

	return m, tea.Batch(cmds...)
}

// completedState maps a settled session to the screen shown for it.
func completedState(s stream.State) State {
	if s.Phase == stream.PhaseIdle && s.LastError != "" {
		return StateError
	}
	return StateComplete
}

// statusLines lists the status texts that apply to s, in display order.
func statusLines(s stream.State) []string {
	var lines []string
	if s.Uploading {
		lines = append(lines, StatusUploading)
	}
	switch s.Phase {
	case stream.PhasePlaying:
		lines = append(lines, StatusPlaying)
	case stream.PhaseFinished:
		lines = append(lines, StatusFinished)
	}
	return lines
}

// drainEvents moves queued progress events into the log view.
func (m *Model) drainEvents() {
	for {
		select {
		case event := <-m.events:
			if event.Level == stream.LevelVerbose && !m.verbose {
				continue
			}
			m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
			if len(m.logs) > maxLogs {
				m.logs = m.logs[len(m.logs)-maxLogs:]
			}
		default:
			return
		}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(m.settings.ProgressInterval(), func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 WAV Stream"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Stream a WAV file and play the converted audio"))
	b.WriteString("\n\n")

	switch m.state {
	case StateSelect:
		b.WriteString(m.viewSelect())
	case StateAlert:
		b.WriteString(m.viewAlert())
	case StateStreaming:
		b.WriteString(m.viewStreaming())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewSelect() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Select a WAV file:"))
	b.WriteString("\n\n")
	b.WriteString(m.filepicker.View())
	b.WriteString("\n\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n\n", verboseCheck))
	b.WriteString(dimStyle.Render(fmt.Sprintf("Endpoint: %s", m.settings.Endpoint)))
	b.WriteString("\n")
	if m.settings.SaveFragments {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Saving to: %s", m.settings.RecordingsPath)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewAlert() string {
	return alertStyle.Render(errorStyle.Render(AlertInvalid)+"\n\n"+dimStyle.Render("press enter to continue")) + "\n"
}

func (m Model) viewStreaming() string {
	var b strings.Builder
	s := m.snapshot

	b.WriteString(m.renderDetails())
	b.WriteString("\n\n")

	for _, line := range statusLines(s) {
		switch line {
		case StatusUploading:
			b.WriteString(m.spinner.View() + " " + subtitleStyle.Render(line))
		case StatusFinished:
			b.WriteString(successStyle.Render("✓ " + line))
		default:
			b.WriteString(infoStyle.Render("♪ " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.Uploading {
		b.WriteString(m.upload.ViewAs(s.UploadPercent() / 100))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("Chunks: %d/%d", s.ChunksSent, s.ChunksTotal)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.playback.ViewAs(s.Progress / 100))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Progress: %.2f%% | Fragments: %d received, %d queued | Played: %.1fs/%.1fs",
		s.Progress,
		s.FragmentsReceived,
		s.Queue.Len(),
		s.PlayedDuration.Seconds(),
		s.TotalDuration.Seconds(),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder
	s := m.snapshot

	title := "✨ " + StatusFinished
	if s.Phase == stream.PhaseIdle {
		title = "No audio was received."
	}
	box := boxStyle.Render(fmt.Sprintf(
		"%s\n\n"+
			"File: %s\n"+
			"Fragments: %d played, %d dropped\n"+
			"Duration: %.2fs\n"+
			"Progress: %.2f%%",
		title,
		detailName(s),
		s.FragmentsPlayed,
		s.FragmentsDropped,
		s.TotalDuration.Seconds(),
		s.Progress,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderDetails() string {
	d := m.snapshot.Details
	if d == nil {
		return ""
	}
	return boxStyle.Render(fmt.Sprintf(
		"%s\n%s\n%s\n%s",
		detailStyle.Render("Name: ")+d.Name,
		detailStyle.Render("Size: ")+d.SizeMiB()+" MB",
		detailStyle.Render("Type: ")+d.MIMEType,
		detailStyle.Render("Extension: ")+d.Extension,
	))
}

func detailName(s stream.State) string {
	if s.Details == nil {
		return "-"
	}
	return s.Details.Name
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case stream.LevelError:
			style = errorStyle
			prefix = "✗"
		case stream.LevelWarning:
			style = warningStyle
			prefix = "!"
		case stream.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case stream.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateSelect:
		return "enter: select • v: verbose • q: quit"
	case StateAlert:
		return "enter: dismiss"
	case StateStreaming:
		return "r: new file • v: verbose • esc/q: quit"
	case StateComplete, StateError:
		return "r: new file • q: quit"
	}
	return ""
}

// runManager runs the session manager for the lifetime of the program.
func (m Model) runManager() tea.Cmd {
	return func() tea.Msg {
		return ManagerDoneMsg{Err: m.manager.Run(m.ctx)}
	}
}

// startStream hands the selected file to the manager, replacing any
// session still playing.
func (m Model) startStream(path string) tea.Cmd {
	return func() tea.Msg {
		id, err := m.manager.Stream(m.ctx, path)
		return StreamStartedMsg{Session: id, Err: err}
	}
}

// Run starts the TUI application. Diagnostics go to settings.LogFile
// when set, since the terminal belongs to the UI.
func Run(settings *config.Settings) error {
	var w io.Writer = io.Discard
	if settings.LogFile != "" {
		f, err := tea.LogToFile(settings.LogFile, "wavstream")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := settings.NewLogger(w)

	output, err := audio.NewOutput(settings.SampleRate, settings.Mute)
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	defer output.Close()

	p := tea.NewProgram(NewModel(settings, output, logger), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
