// Package config provides configuration management for the scrape and build
// phases.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// BodyPlenary is the body code for the GA plenary. Committee bodies use
// their configured codes (c1..c6).
const BodyPlenary = "plenary"

// EnvBaseURL overrides site.base_url when set.
const EnvBaseURL = "UNIGOV_BASE_URL"

// Configuration validation errors.
var (
	ErrMissingSiteTitle         = errors.New("site.title is required")
	ErrMissingDataDir           = errors.New("site.data_dir is required")
	ErrMissingOutputDir         = errors.New("site.output_dir is required")
	ErrMissingAPIBaseURL        = errors.New("api.base_url is required")
	ErrInvalidPageSize          = errors.New("api.page_size must be at least 1")
	ErrInvalidMaxAttempts       = errors.New("api.retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("api.retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("api.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("api.retry.timeout_sec must be at least 1")
	ErrMissingBodyCode          = errors.New("ga.body_code is required")
	ErrNoSessions               = errors.New("at least one ga session is required")
	ErrSessionMissingLabel      = errors.New("session label is required")
	ErrSessionMissingDecision   = errors.New("session decision_label is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete unigov configuration.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	API       APIConfig       `yaml:"api"`
	GA        GAConfig        `yaml:"ga"`
	Templates TemplatesConfig `yaml:"templates"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig contains site metadata and the directory layout.
type SiteConfig struct {
	Title     string `yaml:"title"`
	BaseURL   string `yaml:"base_url"`
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`
}

// APIConfig contains upstream API settings.
type APIConfig struct {
	BaseURL  string      `yaml:"base_url"`
	PageSize int         `yaml:"page_size"`
	Retry    RetryPolicy `yaml:"retry"`
}

// RetryPolicy defines retry behavior for upstream requests.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// SessionConfig describes one GA session. Number is filled from the map key.
type SessionConfig struct {
	Number        string `yaml:"-"`
	Label         string `yaml:"label"`
	DecisionLabel string `yaml:"decision_label"`
}

// GAConfig describes the tracked GA bodies and sessions.
type GAConfig struct {
	BodyCode   string                   `yaml:"body_code"`
	Sessions   map[string]SessionConfig `yaml:"sessions"`
	Committees map[string]string        `yaml:"committees"`
}

// TemplatesConfig holds optional template override paths.
type TemplatesConfig struct {
	ProcedureSteps string `yaml:"procedure_steps"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig loads configuration from a YAML file. Relative data/output
// directories are resolved against the config file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	// Session numbers live in the map keys.
	for number, session := range cfg.GA.Sessions {
		session.Number = number
		cfg.GA.Sessions[number] = session
	}

	if env := os.Getenv(EnvBaseURL); env != "" {
		cfg.Site.BaseURL = env
	}

	baseDir := filepath.Dir(path)
	cfg.Site.DataDir = resolveDir(baseDir, cfg.Site.DataDir)
	cfg.Site.OutputDir = resolveDir(baseDir, cfg.Site.OutputDir)

	if cfg.Templates.ProcedureSteps != "" {
		cfg.Templates.ProcedureSteps = resolveDir(baseDir, cfg.Templates.ProcedureSteps)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func resolveDir(baseDir, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}

	return filepath.Join(baseDir, dir)
}

// applyDefaults fills optional settings so a minimal config stays usable.
func (c *Config) applyDefaults() {
	if c.API.PageSize == 0 {
		c.API.PageSize = 50
	}

	if c.API.Retry == (RetryPolicy{}) {
		c.API.Retry = RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return ErrMissingSiteTitle
	}

	if c.Site.DataDir == "" {
		return ErrMissingDataDir
	}

	if c.Site.OutputDir == "" {
		return ErrMissingOutputDir
	}

	if c.API.BaseURL == "" {
		return ErrMissingAPIBaseURL
	}

	if c.API.PageSize < 1 {
		return ErrInvalidPageSize
	}

	if c.API.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.API.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.API.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.API.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.GA.BodyCode == "" {
		return ErrMissingBodyCode
	}

	if len(c.GA.Sessions) == 0 {
		return ErrNoSessions
	}

	for number, session := range c.GA.Sessions {
		if session.Label == "" {
			return fmt.Errorf("%w: session %q", ErrSessionMissingLabel, number)
		}

		if session.DecisionLabel == "" {
			return fmt.Errorf("%w: session %q", ErrSessionMissingDecision, number)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// Bodies returns the plenary followed by committee codes in sorted order.
func (c *Config) Bodies() []string {
	bodies := []string{BodyPlenary}
	bodies = append(bodies, c.CommitteeCodes()...)

	return bodies
}

// CommitteeCodes returns committee codes in sorted order.
func (c *Config) CommitteeCodes() []string {
	codes := make([]string, 0, len(c.GA.Committees))
	for code := range c.GA.Committees {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}

// SessionNumbers returns configured session numbers in sorted order.
func (c *Config) SessionNumbers() []string {
	numbers := make([]string, 0, len(c.GA.Sessions))
	for number := range c.GA.Sessions {
		numbers = append(numbers, number)
	}

	sort.Strings(numbers)

	return numbers
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sessions: %d, Committees: %d, MaxAttempts: %d, Output: %s}",
		len(c.GA.Sessions),
		len(c.GA.Committees),
		c.API.Retry.MaxAttempts,
		c.Site.OutputDir,
	)
}
