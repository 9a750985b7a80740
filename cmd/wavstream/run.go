package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/gen2brain/beeep"
	"github.com/handiism/wavstream/internal/audio"
	"github.com/handiism/wavstream/internal/config"
	"github.com/handiism/wavstream/internal/model"
	"github.com/handiism/wavstream/internal/stream"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Exit codes.
const (
	exitFinished    = 0
	exitInvalid     = 1
	exitNoPlayback  = 2
	exitInterrupted = 130
)

type Params struct {
	File      string `pos:"true" required:"true" help:"WAV file to stream."`
	Endpoint  string `short:"e" optional:"true" help:"WebSocket endpoint, overrides the config file." default:""`
	Config    string `short:"c" optional:"true" help:"Path to config file." default:""`
	ChunkSize int    `optional:"true" help:"Upload chunk size in bytes, overrides the config file." default:"0"`
	Mute      bool   `short:"m" optional:"true" help:"Do not open an audio device, only time the playback."`
	Save      string `short:"s" optional:"true" help:"Save received fragments under this directory." default:""`
	Playlist  string `short:"p" optional:"true" help:"Playlist format for saved fragments: m3u, pls, wpl or zpl." default:""`
	Notify    bool   `short:"n" optional:"true" help:"Show a desktop notification when playback ends."`
	Verbose   bool   `short:"v" optional:"true" help:"Show verbose output."`
}

var (
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	warningPrefix = color.New(color.FgYellow).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	infoPrefix    = color.New(color.FgCyan).SprintFunc()
	dim           = color.New(color.Faint).SprintFunc()
)

// Run streams params.File and blocks until the session settles.
func Run(ctx context.Context, params *Params, stdout, stderr io.Writer) int {
	settings, err := loadSettings(params)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorPrefix("✗"), err)
		return exitInvalid
	}

	logOut := stderr
	if settings.LogFile != "" {
		f, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(stderr, "%s open log file: %v\n", errorPrefix("✗"), err)
			return exitInvalid
		}
		defer f.Close()
		logOut = f
	} else if !params.Verbose {
		settings.LogLevel = "warn"
	}
	logger := settings.NewLogger(logOut)

	output, err := audio.NewOutput(settings.SampleRate, settings.Mute)
	if err != nil {
		fmt.Fprintf(stderr, "%s open audio output: %v\n", errorPrefix("✗"), err)
		return exitInvalid
	}
	defer output.Close()

	p := &printer{w: stdout, verbose: params.Verbose}
	manager := stream.NewManager(settings, output, logger, p.event)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		manager.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	fmt.Fprintln(stdout, "🎵 WAV Stream")
	fmt.Fprintln(stdout, dim("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))

	if _, err := manager.Stream(runCtx, params.File); err != nil {
		if errors.Is(err, stream.ErrInvalidFileType) && settings.Notify {
			if err := beeep.Alert("wavstream", "Please upload a valid WAV file.", ""); err != nil {
				logger.Warn("desktop alert failed", "err", err)
			}
		}
		return exitInvalid
	}

	renderDetails(stdout, manager.Snapshot().Details)

	state, err := waitWithProgress(runCtx, manager, p, settings.ProgressInterval())
	if err != nil || ctx.Err() != nil {
		fmt.Fprintln(stdout, "\nInterrupted.")
		return exitInterrupted
	}

	fmt.Fprintln(stdout, dim("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Fprintf(stdout, "%d fragment(s) played, %d dropped, %.2fs of audio, progress %.2f%%\n",
		state.FragmentsPlayed, state.FragmentsDropped, state.TotalDuration.Seconds(), state.Progress)

	code := exitCode(state)
	if settings.Notify && code == exitFinished {
		if err := beeep.Notify("wavstream", fmt.Sprintf("Finished playing %s", state.Details.Name), ""); err != nil {
			logger.Warn("desktop notification failed", "err", err)
		}
	}
	return code
}

// loadSettings reads the config file and applies command line overrides.
func loadSettings(params *Params) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if params.Config != "" {
		var err error
		settings, err = config.Load(params.Config)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if params.Endpoint != "" {
		settings.Endpoint = params.Endpoint
	}
	if params.ChunkSize > 0 {
		settings.ChunkSize = params.ChunkSize
	}
	if params.Mute {
		settings.Mute = true
	}
	if params.Save != "" {
		settings.SaveFragments = true
		settings.RecordingsPath = filepath.Join(params.Save, "{name}")
	}
	if params.Playlist != "" {
		settings.PlaylistFormat = params.Playlist
	}
	if params.Notify {
		settings.Notify = true
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// waitWithProgress prints the playback progress whenever it changes until
// the session settles.
func waitWithProgress(ctx context.Context, manager *stream.Manager, p *printer, interval time.Duration) (stream.State, error) {
	settled := make(chan struct{})
	var (
		state stream.State
		err   error
	)
	go func() {
		defer close(settled)
		state, err = manager.Wait(ctx)
	}()

	ticker := time.NewTicker(max(interval, 250*time.Millisecond))
	defer ticker.Stop()

	last := -1.0
	for {
		select {
		case <-settled:
			if err == nil && state.Progress != last {
				p.progress(state)
			}
			return state, err
		case <-ticker.C:
			s := manager.Snapshot()
			if s.Progress != last && s.Phase != stream.PhaseIdle {
				last = s.Progress
				p.progress(s)
			}
		}
	}
}

func exitCode(s stream.State) int {
	if s.Phase == stream.PhaseFinished {
		return exitFinished
	}
	return exitNoPlayback
}

func renderDetails(w io.Writer, d *model.AudioDetails) {
	if d == nil {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Size", "Type", "Extension"})
	t.AppendRow(table.Row{d.Name, d.SizeMiB() + " MB", d.MIMEType, d.Extension})
	t.Render()
}

// printer serializes output from the manager and the progress loop.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

func (p *printer) event(event stream.ProgressEvent) {
	if event.Level == stream.LevelVerbose && !p.verbose {
		return
	}

	var prefix string
	switch event.Level {
	case stream.LevelError:
		prefix = errorPrefix("✗")
	case stream.LevelWarning:
		prefix = warningPrefix("!")
	case stream.LevelSuccess:
		prefix = successPrefix("✓")
	case stream.LevelInfo:
		prefix = infoPrefix("›")
	default:
		prefix = dim("•")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, prefix+" "+event.Message)
}

func (p *printer) progress(s stream.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "  Progress: %.2f%% (%d/%d chunks sent, %d fragment(s) queued)\n",
		s.Progress, s.ChunksSent, s.ChunksTotal, s.Queue.Len())
}
