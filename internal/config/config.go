package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when no path is given.
const DefaultPath = "mdxsite.yaml"

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Theme   ThemeConfig   `yaml:"theme"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SiteConfig holds values shared by every rendered page.
type SiteConfig struct {
	Title      string `yaml:"title" validate:"required"`
	BaseURL    string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Stylesheet string `yaml:"stylesheet" validate:"required"`
	Favicon    string `yaml:"favicon,omitempty"`
}

// SourceConfig locates the documents.
type SourceConfig struct {
	Directory string `yaml:"directory" validate:"required"`
	Extension string `yaml:"extension" validate:"required,startswith=."`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory" validate:"required"`
	Manifest  bool   `yaml:"manifest"`
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	VerifyLinks  bool `yaml:"verify_links"`
	AssetWorkers int  `yaml:"asset_workers" validate:"min=1,max=64"`
}

// ThemeConfig points at an optional directory of template overrides.
type ThemeConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile dump.
type MetricsConfig struct {
	File string `yaml:"file,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Title:      "redindelible",
			Stylesheet: "/style.css",
			Favicon:    "/favicon.png",
		},
		Source: SourceConfig{
			Directory: "./content",
			Extension: ".mdx",
		},
		Output: OutputConfig{
			Directory: "./public",
			Manifest:  true,
		},
		Build: BuildConfig{
			VerifyLinks:  true,
			AssetWorkers: 4,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// Load loads configuration from the specified file. Keys missing from the file
// keep their default values.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve loads configPath, or DefaultPath when configPath is empty. A missing
// default file yields the built-in defaults.
func Resolve(configPath string) (*Config, error) {
	if configPath != "" {
		return Load(configPath)
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return Load(DefaultPath)
	}
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	return Default(), nil
}

func (c *Config) normalize() error {
	level, err := logLevelNormalizer.NormalizeWithError(string(c.Logging.Level))
	if err != nil {
		return err
	}
	format, err := logFormatNormalizer.NormalizeWithError(string(c.Logging.Format))
	if err != nil {
		return err
	}
	c.Logging.Level = level
	c.Logging.Format = format
	return nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Site.BaseURL = "https://example.com"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G306 -- configuration file is meant to be shared
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
