package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// ResolutionFailurePolicy decides what a lazily opened stream does after the
// open itself failed and the failure has been reported once.
type ResolutionFailurePolicy int

const (
	// ResolutionFailureRepeat yields the same error on every later poll.
	ResolutionFailureRepeat ResolutionFailurePolicy = iota
	// ResolutionFailureExhaust yields the error once, then reports exhaustion.
	ResolutionFailureExhaust
)

func (p ResolutionFailurePolicy) String() string {
	switch p {
	case ResolutionFailureRepeat:
		return "repeat"
	case ResolutionFailureExhaust:
		return "exhaust"
	default:
		return "unknown"
	}
}

// ParseResolutionFailurePolicy accepts "repeat" or "exhaust".
func ParseResolutionFailurePolicy(s string) (ResolutionFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "repeat":
		return ResolutionFailureRepeat, nil
	case "exhaust":
		return ResolutionFailureExhaust, nil
	default:
		return ResolutionFailureRepeat, errors.Errorf("invalid resolution failure policy: %q", s)
	}
}

// Environment variables read by FromEnv
const (
	EnvResolutionFailurePolicy = "RECORDBATCH_RESOLUTION_FAILURE_POLICY"
	EnvUseLz4Compression       = "RECORDBATCH_USE_LZ4_COMPRESSION"
	EnvLogLevel                = "RECORDBATCH_LOG_LEVEL"
)

type Config struct {
	ResolutionFailurePolicy ResolutionFailurePolicy
	UseLz4Compression       bool   // frame arrow IPC streams with lz4
	LogLevel                string // zerolog level name, empty keeps the logger default
}

func WithDefaults() *Config {
	return &Config{
		ResolutionFailurePolicy: ResolutionFailureRepeat,
		UseLz4Compression:       false,
	}
}

func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	return &Config{
		ResolutionFailurePolicy: c.ResolutionFailurePolicy,
		UseLz4Compression:       c.UseLz4Compression,
		LogLevel:                c.LogLevel,
	}
}

// FromEnv returns the defaults overridden by RECORDBATCH_* environment variables.
// Any files given are loaded first with godotenv; variables already set in the
// environment take precedence over the files.
func FromEnv(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, errors.Wrap(err, "failed to load env files")
		}
	}

	cfg := WithDefaults()

	if v, ok := os.LookupEnv(EnvResolutionFailurePolicy); ok {
		p, err := ParseResolutionFailurePolicy(v)
		if err != nil {
			return nil, err
		}
		cfg.ResolutionFailurePolicy = p
	}

	if v, ok := os.LookupEnv(EnvUseLz4Compression); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvUseLz4Compression)
		}
		cfg.UseLz4Compression = b
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}

	return cfg, nil
}
