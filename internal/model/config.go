package model

import (
	"fmt"
	"net/url"
	"time"
)

// Version is the contribproof release reported by `version` and the default User-Agent
const Version = "0.3.1"

// Config holds the complete configuration for a proof run
type Config struct {
	DLPID     int          `yaml:"dlp_id" mapstructure:"dlp_id"`
	UserEmail string       `yaml:"user_email" mapstructure:"user_email"` // Optional identity, never written to the proof
	Input     InputConfig  `yaml:"input" mapstructure:"input"`
	Output    OutputConfig `yaml:"output" mapstructure:"output"`
	Oracle    OracleConfig `yaml:"oracle" mapstructure:"oracle"`
	HTTP      HTTPConfig   `yaml:"http" mapstructure:"http"`
}

// InputConfig locates the input record
type InputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"` // Reserved file name prefix of eligible records
}

// OutputConfig locates the proof document
type OutputConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`
	File string `yaml:"file" mapstructure:"file"`
}

// OracleConfig configures the verification endpoint and the call policy around it
type OracleConfig struct {
	URL               string        `yaml:"url" mapstructure:"url"`
	ConfirmPath       string        `yaml:"confirm_path" mapstructure:"confirm_path"` // gjson path of the boolean verdict
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`           // Per attempt
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Backoff           time.Duration `yaml:"backoff" mapstructure:"backoff"` // Base delay, doubled per retry
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// HTTPConfig holds proxy settings for outbound calls.
// Empty values fall back to HTTP_PROXY / HTTPS_PROXY / NO_PROXY.
type HTTPConfig struct {
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		DLPID: 107,
		Input: InputConfig{
			Dir:    "/input",
			Prefix: "vana_",
		},
		Output: OutputConfig{
			Dir:  "/output",
			File: "results.json",
		},
		Oracle: OracleConfig{
			URL:               "https://mcp-api.mindnetwork.io/health-hub/verify/check",
			ConfirmPath:       "data",
			Timeout:           30 * time.Second,
			MaxAttempts:       3,
			Backoff:           time.Second,
			MaxBodyBytes:      1 << 20,
			RequestsPerSecond: 2,
			Burst:             1,
			UserAgent:         "contribproof/" + Version,
		},
	}
}

// Validate checks the configuration before a run
func (c *Config) Validate() error {
	if c.DLPID <= 0 {
		return fmt.Errorf("dlp_id must be a positive integer, got %d", c.DLPID)
	}
	if c.Input.Dir == "" {
		return fmt.Errorf("input.dir must be set")
	}
	if c.Input.Prefix == "" {
		return fmt.Errorf("input.prefix must be set")
	}
	if c.Output.Dir == "" || c.Output.File == "" {
		return fmt.Errorf("output.dir and output.file must be set")
	}

	u, err := url.Parse(c.Oracle.URL)
	if err != nil {
		return fmt.Errorf("oracle.url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("oracle.url must be an absolute http(s) URL, got %q", c.Oracle.URL)
	}
	if c.Oracle.ConfirmPath == "" {
		return fmt.Errorf("oracle.confirm_path must be set")
	}
	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("oracle.timeout must be positive")
	}
	if c.Oracle.MaxAttempts < 1 {
		return fmt.Errorf("oracle.max_attempts must be at least 1, got %d", c.Oracle.MaxAttempts)
	}
	if c.Oracle.Backoff < 0 {
		return fmt.Errorf("oracle.backoff must not be negative")
	}

	return nil
}
