package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"
)

func main() {
	boa.CmdT[Params]{
		Use:   "wavstream <file.wav>",
		Short: "Stream a WAV file to the conversion server and play the audio it returns",
		Long: "wavstream uploads a WAV file over a WebSocket connection in fixed-size chunks, " +
			"then plays every audio fragment the server sends back, in arrival order. " +
			"For interactive mode, use: wavstream-tui",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			code := Run(ctx, params, os.Stdout, os.Stderr)
			stop()
			os.Exit(code)
		},
	}.Run()
}

func paramEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}
