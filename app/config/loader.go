package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultTTLDays   = 30
	defaultColorName = "default"
)

// Loader handles loading and validation of the sources configuration file.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and parses the sources configuration. Document-level
// validation happens here; per-source validation is the registry's job.
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, NewConfigError("failed to read %s: %v", l.path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, NewConfigError("failed to parse %s: %v", l.path, err)
	}

	l.setDefaults(&config)

	if err := l.validate(&config); err != nil {
		return nil, err
	}

	slog.Debug("Configuration loaded", "path", l.path,
		"feed_types", len(config.FeedTypes),
		"rss", len(config.RSS), "html", len(config.HTML),
		"categories", len(config.Categories))

	return &config, nil
}

func (l *Loader) setDefaults(config *Config) {
	if config.TTLDefaultDays == 0 {
		config.TTLDefaultDays = defaultTTLDays
	}

	// global_min_hot may be given as a fraction (0.7) or a percentage (70)
	if config.GlobalMinHot > 0 && config.GlobalMinHot <= 1 {
		config.GlobalMinHot *= 100
	}
}

func (l *Loader) validate(config *Config) error {
	if config.GlobalMinHot < 0 || config.GlobalMinHot > 100 {
		return NewConfigError("global_min_hot must be within [0,100], got %g", config.GlobalMinHot)
	}
	if config.TTLDefaultDays < 0 {
		return NewConfigError("ttl_default_days must be non-negative, got %d", config.TTLDefaultDays)
	}

	for name, color := range config.Colors {
		if color < 0 || color > 0xFFFFFF {
			return NewConfigError("color %q must be a 24-bit integer, got %d", name, color)
		}
	}

	for name, ft := range config.FeedTypes {
		if name == "" {
			return NewConfigError("feed type with empty name")
		}
		if t := ft.SimilarityThreshold; t != nil && (*t < 0 || *t > 100) {
			return NewConfigError("feed type %q: similarity_threshold must be within [0,100], got %d", name, *t)
		}
		if ft.TTLMinutes < 0 || ft.TTLDays < 0 {
			return NewConfigError("feed type %q: TTL must be a positive duration", name)
		}
		if ft.MaxAgeHours < 0 || ft.MaxAgeDays < 0 {
			return NewConfigError("feed type %q: max age must be a positive duration", name)
		}
		if ft.Color != "" {
			if _, ok := config.Colors[ft.Color]; !ok {
				return NewConfigError("feed type %q: unknown color %q", name, ft.Color)
			}
		}
	}

	return nil
}

// ColorFor resolves a named color, falling back to the default entry.
// The boolean reports whether any color was found at all.
func (c *Config) ColorFor(name string) (int, bool) {
	if name != "" {
		if color, ok := c.Colors[name]; ok {
			return color, true
		}
	}
	color, ok := c.Colors[defaultColorName]
	return color, ok
}

// FeedTypeFor returns the declared feed type, or an error naming the
// offending source when the type is unknown.
func (c *Config) FeedTypeFor(sourceName, typeName string) (FeedType, error) {
	ft, ok := c.FeedTypes[typeName]
	if !ok {
		return FeedType{}, NewConfigError("source %q: unknown type %q", sourceName, typeName)
	}
	return ft, nil
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{types=%d rss=%d html=%d categories=%d}",
		len(c.FeedTypes), len(c.RSS), len(c.HTML), len(c.Categories))
}
