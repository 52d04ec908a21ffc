package invokeai

import (
	"fmt"
	"time"
)

// Config is a serialisable representation of the client configuration. It can
// be populated from JSON, YAML, TOML, environment variables, etc. The
// zero-value is useful – all nested fields inherit their package defaults.

type Config struct {
	// BaseURL is the root URL of the remote generation service.
	BaseURL string `json:"baseURL" yaml:"baseURL"`
	// APIKey, when set, is sent as a bearer token on every request.
	APIKey string      `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	Queue  QueueConfig `json:"queue" yaml:"queue"`
	Poll   PollConfig  `json:"poll" yaml:"poll"`
}

type QueueConfig struct {
	// ID selects the server-side queue batches are enqueued to.
	ID string `json:"id" yaml:"id"`
}

type PollConfig struct {
	// Interval between queue item status polls.
	Interval time.Duration `json:"interval" yaml:"interval"`
	// Timeout bounds WaitForCompletion when the caller passes none.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to New via
// WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Queue: QueueConfig{
			ID: "default",
		},
		Poll: PollConfig{
			Interval: 500 * time.Millisecond,
			Timeout:  5 * time.Minute,
		},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.BaseURL == "" {
		return fmt.Errorf("baseURL must not be empty")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be > 0")
	}
	if c.Poll.Timeout <= 0 {
		return fmt.Errorf("poll.timeout must be > 0")
	}
	return nil
}
