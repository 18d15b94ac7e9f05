package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aldemir/schelling-explorer/internal/api"
	"github.com/aldemir/schelling-explorer/internal/config"
	"github.com/aldemir/schelling-explorer/internal/engine"
	"github.com/aldemir/schelling-explorer/internal/persistence"
	"github.com/aldemir/schelling-explorer/internal/stats"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation to completion",
		Long: `Run a simulation until it reaches its step budget or, with
stop-on-equilibrium, until no agent is unhappy.

Example:
  schelling run --config model.yaml --db runs.db --api-port 8080`,
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

			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			if err := m.Start(); err != nil {
				return err
			}

			runID := ""
			if db != nil {
				runID, err = db.CreateRun(m)
				if err != nil {
					return err
				}
			}

			var server *api.Server
			if port, _ := cmd.Flags().GetInt("api-port"); port > 0 {
				server = &api.Server{DB: db, Port: port}
				server.Start()
			}

			m.SetObserver(func(m *engine.Model) {
				density := stats.InterfaceDensity(m)
				unhappy := stats.PercentUnhappy(m)

				if db != nil {
					if err := db.RecordTick(runID, m.Tick(), density, unhappy); err != nil {
						slog.Error("tick record failed", "tick", m.Tick(), "error", err)
					}
				}
				if server != nil {
					server.Publish(m.Snapshot(), runID, density, unhappy)
				}
			})

			started := time.Now()
			if err := m.Run(); err != nil {
				return err
			}

			if db != nil {
				if err := db.FinishRun(runID, m.Tick()); err != nil {
					return err
				}
			}

			density := stats.InterfaceDensity(m)
			unhappy := stats.PercentUnhappy(m)

			fmt.Printf("Run complete: %s ticks in %s (%s agents).\n",
				humanize.Comma(int64(m.Tick())),
				time.Since(started).Round(time.Millisecond),
				humanize.Comma(int64(len(m.Agents()))),
			)
			fmt.Printf("Interface density: %.4f\n", density)
			for i, g := range m.Groups() {
				fmt.Printf("%s: %.1f%% unhappy\n", g.Name(), unhappy[i])
			}
			if runID != "" {
				fmt.Printf("Recorded as run %s\n", runID)
			}
			return nil
		},
	}

	addModelFlags(cmd)
	cmd.Flags().Int("api-port", 0, "Serve the HTTP API on this port while running (0 = disabled)")
	return cmd
}

// loadConfig reads the --config file, or returns the default two-group
// configuration when no file is given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openStore opens the --db run store, or returns nil when persistence is
// not requested.
func openStore(cmd *cobra.Command) (*persistence.DB, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return persistence.Open(path)
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("seed", 0, "RNG seed (overrides config)")
	cmd.Flags().Int("width", 0, "Grid width (overrides config)")
	cmd.Flags().Int("height", 0, "Grid height (overrides config)")
	cmd.Flags().Int("steps", 0, "Maximum number of ticks (overrides config)")
	cmd.Flags().String("dynamics", "", "Dynamics variant: liquid, solid, or swap")
	cmd.Flags().String("utility", "", "Utility variant: absolute or relative")
	cmd.Flags().String("updater", "", "Updater variant: single or batch")
	cmd.Flags().Bool("stop-on-equilibrium", false, "Stop as soon as no agent is unhappy")
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("width") {
		cfg.Width, _ = cmd.Flags().GetInt("width")
		if cfg.Height == 0 {
			cfg.Height = cfg.Width
		}
	}
	if cmd.Flags().Changed("height") {
		cfg.Height, _ = cmd.Flags().GetInt("height")
		if cfg.Width == 0 {
			cfg.Width = cfg.Height
		}
	}
	if cmd.Flags().Changed("steps") {
		cfg.MaxSteps, _ = cmd.Flags().GetInt("steps")
	}
	if cmd.Flags().Changed("dynamics") {
		cfg.Dynamics, _ = cmd.Flags().GetString("dynamics")
	}
	if cmd.Flags().Changed("utility") {
		cfg.Utility, _ = cmd.Flags().GetString("utility")
	}
	if cmd.Flags().Changed("updater") {
		cfg.Updater, _ = cmd.Flags().GetString("updater")
	}
	if cmd.Flags().Changed("stop-on-equilibrium") {
		cfg.StopOnEquilibrium, _ = cmd.Flags().GetBool("stop-on-equilibrium")
	}
}
