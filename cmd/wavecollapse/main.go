// Package main is the entry point for wavecollapse.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/samdwyer/wavecollapse/internal/config"
	"github.com/samdwyer/wavecollapse/internal/telemetry"
)

var (
	configPath string
	sheetPath  string
	flagCfg    = config.Default()
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wavecollapse",
		Short:         "Generate images that locally resemble a small sample",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&flagCfg.Sample, "sample", "s", flagCfg.Sample, "catalogue sample id")
	pf.StringVar(&flagCfg.SamplePath, "sample-path", "", "sample image file (png, jpeg, gif, bmp)")
	pf.IntVarP(&flagCfg.Width, "width", "W", flagCfg.Width, "output width in cells")
	pf.IntVarP(&flagCfg.Height, "height", "H", flagCfg.Height, "output height in cells")
	pf.Int64Var(&flagCfg.Seed, "seed", 0, "random seed (0 = time based)")
	pf.StringVar(&flagCfg.ScanOrder, "scan-order", flagCfg.ScanOrder, "tile extraction order: column or row")
	pf.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "debug, info, warn or error")
	pf.BoolVar(&flagCfg.Telemetry, "telemetry", false, "export traces over OTLP")

	root.AddCommand(newRunCmd(), newWatchCmd(), newSamplesCmd(), newTilesCmd())
	return root
}

// loadConfig merges defaults, the config file, the environment and any
// flags the user set explicitly, then validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("sample", func() { cfg.Sample = flagCfg.Sample })
	set("sample-path", func() { cfg.SamplePath = flagCfg.SamplePath })
	set("width", func() { cfg.Width = flagCfg.Width })
	set("height", func() { cfg.Height = flagCfg.Height })
	set("seed", func() { cfg.Seed = flagCfg.Seed })
	set("scan-order", func() { cfg.ScanOrder = flagCfg.ScanOrder })
	set("log-level", func() { cfg.LogLevel = flagCfg.LogLevel })
	set("telemetry", func() { cfg.Telemetry = flagCfg.Telemetry })
	set("output", func() { cfg.Output = flagCfg.Output })
	set("scale", func() { cfg.Scale = flagCfg.Scale })
	set("steps-per-tick", func() { cfg.StepsPerTick = flagCfg.StepsPerTick })
	set("tick-rate", func() { cfg.TickRate = flagCfg.TickRate })

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// setupTelemetry starts the OTLP exporter when enabled. Failures are logged
// and the program continues without observability.
func setupTelemetry(ctx context.Context, cfg config.Config, logger *slog.Logger) telemetry.ShutdownFunc {
	if !cfg.Telemetry {
		return telemetry.Disabled()
	}

	setupOTelEnv()
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Warn("telemetry setup failed, continuing without it", "error", err)
		return telemetry.Disabled()
	}
	return shutdown
}

// setupOTelEnv configures OTEL environment variables from our own variables
// when the standard ones are not set.
func setupOTelEnv() {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		if endpoint := os.Getenv("WAVECOLLAPSE_OTLP_ENDPOINT"); endpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", endpoint)
		}
	}

	apiKey := os.Getenv("HONEYCOMB_WAVECOLLAPSE_API_KEY")
	dataset := os.Getenv("HONEYCOMB_WAVECOLLAPSE_DATASET")
	if dataset == "" {
		dataset = "wavecollapse"
	}
	if apiKey != "" && os.Getenv("OTEL_EXPORTER_OTLP_HEADERS") == "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
