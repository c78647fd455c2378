// Package config holds the settings shared by the result receiver, the
// update runner and the chresult command.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/revrobotics/chupdater/application/updater"
	"github.com/revrobotics/chupdater/wireformat"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is read from YAML files or from already decoded maps.
type Config struct {
	LogLevel       string `json:"log_level" yaml:"log_level"`
	DisplayPrefix  string `json:"display_prefix" yaml:"display_prefix"`
	BusyMarker     string `json:"busy_marker" yaml:"busy_marker"`
	BusyRetryDelay string `json:"busy_retry_delay" yaml:"busy_retry_delay"`
	QueueSize      int    `json:"queue_size" yaml:"queue_size"`
	Format         string `json:"format" yaml:"format"`
}

// FieldError describes one invalid setting.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:       "info",
		BusyMarker:     updater.DefaultBusyMarker,
		BusyRetryDelay: updater.DefaultBusyRetryDelay.String(),
		QueueSize:      updater.DefaultQueueSize,
		Format:         string(wireformat.FormatJSON),
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromMap applies m on top of Default.
func FromMap(m map[string]any) (Config, error) {
	cfg := Default()
	if err := Validate(m, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Check reports every invalid setting.
func (c Config) Check() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, &FieldError{Field: "log_level", Message: err.Error()})
	}
	if _, err := c.RetryDelay(); err != nil {
		errs = append(errs, &FieldError{Field: "busy_retry_delay", Message: err.Error()})
	}
	if c.QueueSize < 1 {
		errs = append(errs, &FieldError{Field: "queue_size", Message: "must be at least 1"})
	}
	if _, err := wireformat.ParseFormat(c.Format); err != nil {
		errs = append(errs, &FieldError{Field: "format", Message: err.Error()})
	}
	return errors.Join(errs...)
}

// RetryDelay parses BusyRetryDelay. An empty value means the default.
func (c Config) RetryDelay() (time.Duration, error) {
	if c.BusyRetryDelay == "" {
		return updater.DefaultBusyRetryDelay, nil
	}
	d, err := time.ParseDuration(c.BusyRetryDelay)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// Level parses LogLevel. An empty value means info.
func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(c.LogLevel)
}

// RunnerOptions converts the runner settings. Call Check first.
func (c Config) RunnerOptions() []updater.Option {
	opts := []updater.Option{
		updater.WithBusyMarker(c.BusyMarker),
		updater.WithQueueSize(c.QueueSize),
	}
	if d, err := c.RetryDelay(); err == nil {
		opts = append(opts, updater.WithBusyRetryDelay(d))
	}
	return opts
}
