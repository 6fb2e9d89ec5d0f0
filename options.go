package recordbatch

import (
	"github.com/databricks/databricks-recordbatch-go/internal/config"
	"github.com/databricks/databricks-recordbatch-go/logger"
)

// ResolutionFailurePolicy decides what an AsyncStreamAdapter yields after its
// stream future failed and the failure has been reported once.
type ResolutionFailurePolicy = config.ResolutionFailurePolicy

const (
	// ResolutionFailureRepeat yields the same error on every poll. This is the default.
	ResolutionFailureRepeat = config.ResolutionFailureRepeat
	// ResolutionFailureExhaust yields the error once, then reports exhaustion.
	ResolutionFailureExhaust = config.ResolutionFailureExhaust
)

// AsyncOption configures an AsyncStreamAdapter
type AsyncOption func(*config.Config)

func WithResolutionFailurePolicy(p ResolutionFailurePolicy) AsyncOption {
	return func(c *config.Config) {
		c.ResolutionFailurePolicy = p
	}
}

// WithEnvConfig applies the RECORDBATCH_* environment settings read by config.FromEnv.
// The environment and files are read each time the option is applied; invalid
// settings are logged and the defaults are kept. Use LoadEnvOptions to read them
// once and check the error.
func WithEnvConfig(files ...string) AsyncOption {
	return func(c *config.Config) {
		opts, err := LoadEnvOptions(files...)
		if err != nil {
			logger.Warn().Err(err).Msg("recordbatch: ignoring environment settings")
			return
		}
		for _, opt := range opts {
			opt(c)
		}
	}
}

// LoadEnvOptions reads the RECORDBATCH_* environment settings, after loading files
// with godotenv, and returns them as options for NewAsyncStreamAdapter.
func LoadEnvOptions(files ...string) ([]AsyncOption, error) {
	env, err := config.FromEnv(files...)
	if err != nil {
		return nil, err
	}
	return []AsyncOption{WithResolutionFailurePolicy(env.ResolutionFailurePolicy)}, nil
}
