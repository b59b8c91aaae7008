// Package config loads wavecollapse settings from defaults, a YAML file and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/samdwyer/wavecollapse/internal/collapse"
)

// EnvPrefix prefixes every environment override, e.g. WAVECOLLAPSE_WIDTH.
const EnvPrefix = "WAVECOLLAPSE_"

// Config holds run configuration.
type Config struct {
	// Sample is the catalogue ID of the sample. Ignored when SamplePath is set.
	Sample string `yaml:"sample" validate:"required_without=SamplePath"`
	// SamplePath is an image file to use as the sample.
	SamplePath string `yaml:"sample_path"`

	Width  int `yaml:"width" validate:"min=1,max=512"`
	Height int `yaml:"height" validate:"min=1,max=512"`

	// Seed for the random source. A seed of 0 means a random seed will be generated.
	Seed int64 `yaml:"seed"`

	ScanOrder string `yaml:"scan_order" validate:"oneof=column row"`

	// Output is the PNG written by the run command.
	Output string `yaml:"output" validate:"required"`
	Scale  int    `yaml:"scale" validate:"min=1,max=64"`

	// Watch mode pacing.
	StepsPerTick int           `yaml:"steps_per_tick" validate:"min=1"`
	TickRate     time.Duration `yaml:"tick_rate" validate:"gt=0"`

	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Telemetry bool   `yaml:"telemetry"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Sample:       "bordered",
		Width:        32,
		Height:       32,
		ScanOrder:    collapse.ColumnMajor.String(),
		Output:       "output.png",
		Scale:        8,
		StepsPerTick: 1,
		TickRate:     16 * time.Millisecond,
		LogLevel:     "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// not empty) and then with WAVECOLLAPSE_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := cfg.decodeYAML(bytes.NewReader(data)); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("SAMPLE", &c.Sample)
	str("SAMPLE_PATH", &c.SamplePath)
	str("SCAN_ORDER", &c.ScanOrder)
	str("OUTPUT", &c.Output)
	str("LOG_LEVEL", &c.LogLevel)

	for name, dst := range map[string]*int{
		"WIDTH":          &c.Width,
		"HEIGHT":         &c.Height,
		"SCALE":          &c.Scale,
		"STEPS_PER_TICK": &c.StepsPerTick,
	} {
		if err := num(name, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sSEED: %w", EnvPrefix, err)
		}
		c.Seed = seed
	}
	if v, ok := lookup(EnvPrefix + "TICK_RATE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTICK_RATE: %w", EnvPrefix, err)
		}
		c.TickRate = d
	}
	if v, ok := lookup(EnvPrefix + "TELEMETRY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sTELEMETRY: %w", EnvPrefix, err)
		}
		c.Telemetry = b
	}
	return nil
}

var validate = validator.New()

// Validate checks field ranges and enums.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Order returns the parsed scan order.
func (c *Config) Order() collapse.ScanOrder {
	order, err := collapse.ParseScanOrder(c.ScanOrder)
	if err != nil {
		return collapse.ColumnMajor
	}
	return order
}

// ResolvedSeed returns Seed, or a time based seed when Seed is 0.
func (c *Config) ResolvedSeed() int64 {
	if c.Seed == 0 {
		return time.Now().UnixNano()
	}
	return c.Seed
}

// SlogLevel converts LogLevel to a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
