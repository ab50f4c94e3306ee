package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when --config is not given
const DefaultPath = "/etc/shredder/config.yaml"

type LoggingCfg struct {
	Dir          string `yaml:"dir" json:"dir"`                     // Empty logs to stdout only
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type MetricsCfg struct {
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"` // node_exporter textfile collector target
}

type SafetyCfg struct {
	AllowedRoots   []string `yaml:"allowed_roots" json:"allowed_roots"`     // Empty means no root restriction
	ProtectedPaths []string `yaml:"protected_paths" json:"protected_paths"` // Added to the built-in protected set
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // 0 disables throttling
}

type Config struct {
	ChunkSizeBytes int            `yaml:"chunk_size_bytes" json:"chunk_size_bytes"`
	DatabasePath   string         `yaml:"database_path" json:"database_path"` // SQLite shred history; empty disables
	Logging        LoggingCfg     `yaml:"logging" json:"logging"`
	Metrics        MetricsCfg     `yaml:"metrics" json:"metrics"`
	Safety         SafetyCfg      `yaml:"safety" json:"safety"`
	ResourceLimits ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
}

var (
	errInvalidPath      = errors.New("path must be absolute")
	errNegativeChunk    = errors.New("chunk_size_bytes cannot be negative")
	errInvalidCPU       = errors.New("max_cpu_percent must be between 0 and 100")
	errNegativeRotation = errors.New("rotation_days cannot be negative")
)

// Default returns a validated configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	// An empty config cannot fail validation
	_ = cfg.validateAndDefault()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file
			return cfg, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate re-checks a config after CLI overrides have been applied
func (c *Config) Validate() error {
	return c.validateAndDefault()
}

func (c *Config) validateAndDefault() error {
	if c.ChunkSizeBytes < 0 {
		return errNegativeChunk
	}
	if c.ChunkSizeBytes == 0 {
		c.ChunkSizeBytes = 1024
	}

	if c.Logging.RotationDays < 0 {
		return errNegativeRotation
	}
	if c.Logging.RotationDays == 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.ResourceLimits.MaxCPUPercent < 0 || c.ResourceLimits.MaxCPUPercent > 100 {
		return errInvalidCPU
	}

	if c.DatabasePath != "" {
		c.DatabasePath = filepath.Clean(c.DatabasePath)
	}
	if c.Logging.Dir != "" {
		c.Logging.Dir = filepath.Clean(c.Logging.Dir)
	}
	if c.Metrics.TextfilePath != "" {
		c.Metrics.TextfilePath = filepath.Clean(c.Metrics.TextfilePath)
	}

	roots := make([]string, 0, len(c.Safety.AllowedRoots))
	for _, p := range c.Safety.AllowedRoots {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return fmt.Errorf("allowed_roots: %w", err)
		}
		roots = append(roots, cp)
	}
	c.Safety.AllowedRoots = roots

	protected := make([]string, 0, len(c.Safety.ProtectedPaths))
	for _, p := range c.Safety.ProtectedPaths {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return fmt.Errorf("protected_paths: %w", err)
		}
		protected = append(protected, cp)
	}
	c.Safety.ProtectedPaths = protected

	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}
