package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samdwyer/wavecollapse/internal/app"
	"github.com/samdwyer/wavecollapse/internal/collapse"
	"github.com/samdwyer/wavecollapse/internal/imageio"
	"github.com/samdwyer/wavecollapse/internal/samples"
	"github.com/samdwyer/wavecollapse/internal/ui"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collapse a full output and write it as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown := setupTelemetry(ctx, cfg, logger)
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("telemetry shutdown failed", "error", err)
				}
			}()

			runner := app.NewRunner(cfg, samples.MustLoadRegistry(), logger)
			result, err := runner.Run(ctx, true)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: seed=%d tiles=%d steps=%d starved=%d elapsed=%s -> %s\n",
				result.RunID, result.Seed, result.Tiles, result.Stats.Steps, result.Stats.Starved,
				result.Elapsed.Round(time.Millisecond), result.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flagCfg.Output, "output", "o", flagCfg.Output, "PNG file to write")
	f.IntVar(&flagCfg.Scale, "scale", flagCfg.Scale, "pixels per cell in the PNG")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Animate the collapse in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// The terminal is taken over, so only errors reach stderr
			if !cmd.Flags().Changed("log-level") {
				cfg.LogLevel = "error"
			}
			logger := newLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown := setupTelemetry(ctx, cfg, logger)
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("telemetry shutdown failed", "error", err)
				}
			}()

			screen, err := ui.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to initialize terminal: %w", err)
			}
			defer screen.Close()

			runner := app.NewRunner(cfg, samples.MustLoadRegistry(), logger)
			watcher, err := app.NewWatcher(ctx, runner, screen)
			if err != nil {
				return err
			}
			return watcher.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.IntVar(&flagCfg.StepsPerTick, "steps-per-tick", flagCfg.StepsPerTick, "cells resolved per frame")
	f.DurationVar(&flagCfg.TickRate, "tick-rate", flagCfg.TickRate, "time between frames")
	return cmd
}

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the built-in samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := samples.LoadRegistry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, def := range registry.All() {
				w, h := def.Size()
				fmt.Fprintf(out, "%-10s %2dx%-2d  %s\n", def.ID, w, h, def.Description)
			}
			return nil
		},
	}
}

func newTilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "Show the tile pool extracted from the selected sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runner := app.NewRunner(cfg, samples.MustLoadRegistry(), newLogger(cfg))
			sample, err := runner.LoadSample()
			if err != nil {
				return err
			}
			tiles, err := collapse.ExtractTiles(cmd.Context(), sample, cfg.Order())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sample %dx%d, %s order: %d tiles\n",
				sample.Width(), sample.Height(), cfg.Order(), len(tiles))
			fmt.Fprint(out, "palette:")
			for _, c := range sample.Palette() {
				fmt.Fprintf(out, " %s", c)
			}
			fmt.Fprintln(out)

			centres := make(map[collapse.Color]int)
			for _, t := range tiles {
				centres[t.Center()]++
			}
			for _, c := range sample.Palette() {
				if n := centres[c]; n > 0 {
					fmt.Fprintf(out, "  centre %s: %d tiles\n", c, n)
				}
			}

			if sheetPath != "" {
				columns := sample.Width() - collapse.TileSize + 1
				if err := imageio.WriteTileSheet(sheetPath, tiles, columns, cfg.Scale); err != nil {
					return err
				}
				fmt.Fprintf(out, "tile sheet -> %s\n", sheetPath)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&sheetPath, "sheet", "", "write every tile to this PNG, one pixel gutter apart")
	f.IntVar(&flagCfg.Scale, "scale", flagCfg.Scale, "pixels per tile pixel in the sheet")
	return cmd
}
