package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aldemir/schelling-explorer/internal/viewer"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a simulation with a live terminal view",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, cfg)

			m, err := cfg.Build()
			if err != nil {
				return err
			}

			interval, _ := cmd.Flags().GetDuration("interval")

			// Engine log lines would tear the rendered frame apart.
			restore := slog.Default()
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
			defer slog.SetDefault(restore)

			return viewer.Run(m, interval)
		},
	}

	addModelFlags(cmd)
	cmd.Flags().Duration("interval", 50*time.Millisecond, "Delay between ticks")
	return cmd
}
