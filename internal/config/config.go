package config

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/kelseyhightower/envconfig"

	"github.com/ib-77/stagepipe/pkg/failure"
	"github.com/ib-77/stagepipe/pkg/pipeline"
)

const CommandRun = "run"

var (
	ErrMissingCommand = errors.New("missing command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingFlag    = errors.New("missing required flag")
)

// Config holds all application configuration.
type Config struct {
	Input       string `ignored:"true"`
	Output      string `envconfig:"STAGEPIPE_OUTPUT" default:"output.txt"`
	Capacity    int    `envconfig:"STAGEPIPE_CAPACITY" default:"100"`
	MaxWorkers  int    `envconfig:"STAGEPIPE_MAX_WORKERS" default:"1024"`
	MetricsFile string `envconfig:"STAGEPIPE_METRICS_FILE"`

	Pools   pipeline.PoolSizes `ignored:"true"`
	Logging LogConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"STAGEPIPE_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"STAGEPIPE_LOG_DEV" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, failure.Config("environment", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Output:     "output.txt",
		Capacity:   100,
		MaxWorkers: 1024,
		Logging: LogConfig{
			Level:       "info",
			Development: true,
		},
	}
}

// Parse loads the environment and then applies the command line, which
// takes precedence. args excludes the program name:
//
//	run --input <path> --read N --upper N --replace N --write N
func Parse(args []string, output io.Writer) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return nil, failure.Config("args", ErrMissingCommand)
	}
	if args[0] != CommandRun {
		return nil, failure.Config("args", fmt.Errorf("%w: %q", ErrUnknownCommand, args[0]))
	}

	fs := flag.NewFlagSet(CommandRun, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Input, "input", "", "input text file (required)")
	fs.IntVar(&cfg.Pools.Read, "read", 0, "read workers (required)")
	fs.IntVar(&cfg.Pools.Upper, "upper", 0, "uppercase workers (required)")
	fs.IntVar(&cfg.Pools.Replace, "replace", 0, "replace workers (required)")
	fs.IntVar(&cfg.Pools.Write, "write", 0, "write workers (required)")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "output text file")
	fs.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "maximum number of input lines")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write prometheus metrics to this file")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, failure.Config("flags", err)
	}
	if fs.NArg() > 0 {
		return nil, failure.Config("flags", fmt.Errorf("unexpected arguments: %v", fs.Args()))
	}

	seen := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	for _, name := range []string{"input", "read", "upper", "replace", "write"} {
		if !seen[name] {
			return nil, failure.Config("flags", fmt.Errorf("%w: --%s", ErrMissingFlag, name))
		}
	}

	if err := cfg.Pipeline().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Pipeline returns the driver configuration.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		Input:      c.Input,
		Output:     c.Output,
		Capacity:   c.Capacity,
		MaxWorkers: c.MaxWorkers,
		Pools:      c.Pools,
	}
}
