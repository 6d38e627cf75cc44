package unwatch

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/x26prakhar/unwatch/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// Config holds all service configuration. Fields map to the YAML config
// file; secrets come from the environment, never from the file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Render    RenderConfig    `yaml:"render"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"` // listen address (default ":8080")
}

// CacheConfig defines result cache persistence.
type CacheConfig struct {
	File string `yaml:"file"` // cache file path (default "transcript_cache.json")
}

// GeminiConfig defines the cleaning/highlight model.
// The API key is intentionally absent: it is read from GOOGLE_API_KEY.
type GeminiConfig struct {
	Model string `yaml:"model"` // empty = DefaultGeminiModel
}

// ExtractorConfig defines transcript extraction options.
type ExtractorConfig struct {
	Binary string `yaml:"binary"` // yt-dlp binary (default "yt-dlp")
	Proxy  string `yaml:"proxy"`  // optional egress proxy URL
}

// RenderConfig defines rendering limits.
type RenderConfig struct {
	ImageTimeoutSeconds int `yaml:"imageTimeoutSeconds"` // default 5
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":8080"},
		Cache:     CacheConfig{File: "transcript_cache.json"},
		Gemini:    GeminiConfig{Model: DefaultGeminiModel},
		Extractor: ExtractorConfig{Binary: "yt-dlp"},
		Render:    RenderConfig{ImageTimeoutSeconds: int(DefaultImageTimeout / time.Second)},
	}
}

// LoadConfig loads configuration from a YAML file, filling unset fields with
// defaults. Returns an error if the file is not found (no silent fallback)
// or contains unknown fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	// An empty file is a valid config that sets nothing.
	if len(data) > 0 {
		if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}
	cfg.fillDefaults()
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the configuration.
// UNWATCH_* variables override file values; empty variables are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("UNWATCH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("UNWATCH_CACHE_FILE"); v != "" {
		c.Cache.File = v
	}
	if v := os.Getenv("UNWATCH_GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("UNWATCH_YTDLP"); v != "" {
		c.Extractor.Binary = v
	}
	if v := os.Getenv("UNWATCH_PROXY"); v != "" {
		c.Extractor.Proxy = v
	}
}

// APIKey returns the Gemini credential from the environment.
func (c *Config) APIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

// ImageTimeout returns the bounded remote-image fetch timeout.
func (c *Config) ImageTimeout() time.Duration {
	return time.Duration(c.Render.ImageTimeoutSeconds) * time.Second
}

// fillDefaults replaces zero values a sparse YAML file left behind.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Cache.File == "" {
		c.Cache.File = def.Cache.File
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = def.Gemini.Model
	}
	if c.Extractor.Binary == "" {
		c.Extractor.Binary = def.Extractor.Binary
	}
	if c.Render.ImageTimeoutSeconds <= 0 {
		c.Render.ImageTimeoutSeconds = def.Render.ImageTimeoutSeconds
	}
}
