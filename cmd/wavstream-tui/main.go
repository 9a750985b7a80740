package main

import (
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/handiism/wavstream/internal/config"
	"github.com/handiism/wavstream/internal/tui"
	"github.com/spf13/cobra"
)

type Params struct {
	Config   string `short:"c" optional:"true" help:"Path to config file." default:""`
	Endpoint string `short:"e" optional:"true" help:"WebSocket endpoint, overrides the config file." default:""`
	Mute     bool   `short:"m" optional:"true" help:"Do not open an audio device, only time the playback."`
	LogFile  string `short:"l" optional:"true" help:"Write diagnostics to this file." default:""`
}

func main() {
	boa.CmdT[Params]{
		Use:   "wavstream-tui",
		Short: "Pick a WAV file, stream it to the conversion server and play the result",
		ParamEnrich: boa.ParamEnricherCombine(
			boa.ParamEnricherBool,
			boa.ParamEnricherName,
			boa.ParamEnricherShort,
		),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			settings, err := loadSettings(params)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := tui.Run(settings); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}.Run()
}

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
	if params.Mute {
		settings.Mute = true
	}
	if params.LogFile != "" {
		settings.LogFile = params.LogFile
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}
