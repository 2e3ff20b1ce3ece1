package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hupe1980/trsgd"
	"github.com/hupe1980/trsgd/codec"
)

// Config holds the harness settings. Values come from defaults, then the TOML
// file named by -config, then flags set on the command line.
type Config struct {
	Params        string `toml:"params"`
	Model         string `toml:"model"`
	Spaces        int    `toml:"spaces"`
	Seed          uint64 `toml:"seed"`
	ReseekEvery   uint64 `toml:"reseek_every"`
	ReportEvery   uint64 `toml:"report_every"`
	Report        string `toml:"report"`
	ReportCodec   string `toml:"report_codec"`
	MetricsAddr   string `toml:"metrics_addr"`
	LogLevel      string `toml:"log_level"`
	LogJSON       bool   `toml:"log_json"`
	SkipMalformed bool   `toml:"skip_malformed"`

	S3    S3Config    `toml:"s3"`
	MinIO MinIOConfig `toml:"minio"`
}

// S3Config configures s3:// model locations.
type S3Config struct {
	Region string `toml:"region"`
}

// MinIOConfig configures minio:// model locations.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Secure    bool   `toml:"secure"`
}

// DefaultConfig returns the settings of the classic harness.
func DefaultConfig() Config {
	return Config{
		Params:      "param_learner.txt",
		Model:       "model.txt",
		Spaces:      80,
		ReseekEvery: trsgd.DefaultReseekEvery,
		ReportEvery: trsgd.DefaultReportEvery,
		ReportCodec: codec.Default.Name(),
		LogLevel:    "info",
	}
}

// Args are the positional arguments: DATALIST N_ITER [START_ITER].
type Args struct {
	DataList  string
	NIter     uint64
	StartIter uint64
}

const usage = "usage: trsgd [flags] DATALIST N_ITER [START_ITER]"

func parseArgs(argv []string, stderr io.Writer) (Config, Args, error) {
	cfg := DefaultConfig()
	var configPath string

	fs := flag.NewFlagSet("trsgd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&configPath, "config", "", "TOML config file")
	fs.StringVar(&cfg.Params, "params", cfg.Params, "learner parameter file")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "model location (path, s3://bucket/key or minio://bucket/key)")
	fs.IntVar(&cfg.Spaces, "spaces", cfg.Spaces, "number of feature spaces")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "sampler seed (0 picks a random seed)")
	fs.Uint64Var(&cfg.ReseekEvery, "reseek-every", cfg.ReseekEvery, "records between reseeks")
	fs.Uint64Var(&cfg.ReportEvery, "report-every", cfg.ReportEvery, "records between progress reports")
	fs.StringVar(&cfg.Report, "report", cfg.Report, "append JSON progress reports to this file")
	fs.StringVar(&cfg.ReportCodec, "report-codec", cfg.ReportCodec, "report encoding ("+strings.Join(codec.Names(), ", ")+")")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON")
	fs.BoolVar(&cfg.SkipMalformed, "skip-malformed", cfg.SkipMalformed, "skip records that fail to parse")
	fs.StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "AWS region for s3:// locations")
	fs.StringVar(&cfg.MinIO.Endpoint, "minio-endpoint", cfg.MinIO.Endpoint, "MinIO endpoint for minio:// locations")
	fs.StringVar(&cfg.MinIO.AccessKey, "minio-access-key", cfg.MinIO.AccessKey, "MinIO access key")
	fs.StringVar(&cfg.MinIO.SecretKey, "minio-secret-key", cfg.MinIO.SecretKey, "MinIO secret key")
	fs.BoolVar(&cfg.MinIO.Secure, "minio-secure", cfg.MinIO.Secure, "use TLS for MinIO")

	if err := fs.Parse(argv); err != nil {
		return Config{}, Args{}, err
	}

	if configPath != "" {
		set := map[string]string{}
		fs.Visit(func(f *flag.Flag) {
			set[f.Name] = f.Value.String()
		})
		if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
			return Config{}, Args{}, fmt.Errorf("config %s: %w", configPath, err)
		}
		for name, v := range set {
			if err := fs.Set(name, v); err != nil {
				return Config{}, Args{}, err
			}
		}
	}

	args, err := parsePositional(fs.Args())
	if err != nil {
		return Config{}, Args{}, err
	}
	if cfg.Spaces <= 0 {
		return Config{}, Args{}, fmt.Errorf("spaces must be positive, got %d", cfg.Spaces)
	}
	return cfg, args, nil
}

func parsePositional(rest []string) (Args, error) {
	if len(rest) < 2 || len(rest) > 3 {
		return Args{}, errors.New(usage)
	}
	var (
		a   = Args{DataList: rest[0]}
		err error
	)
	if a.NIter, err = strconv.ParseUint(rest[1], 10, 64); err != nil {
		return Args{}, fmt.Errorf("N_ITER: %w", err)
	}
	if len(rest) == 3 {
		if a.StartIter, err = strconv.ParseUint(rest[2], 10, 64); err != nil {
			return Args{}, fmt.Errorf("START_ITER: %w", err)
		}
	}
	return a, nil
}

func (c Config) logger() (*trsgd.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	if c.LogJSON {
		return trsgd.NewJSONLogger(level), nil
	}
	return trsgd.NewTextLogger(level), nil
}
