package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "vibestream"

	// EnvConfigPath overrides the config file location
	EnvConfigPath = "VIBESTREAM_CONFIG"
)

// ConfigDir returns the standard config directory.
// Windows: %APPDATA%\vibestream\
// macOS/Linux: ~/.config/vibestream/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file, honoring the env override
func ConfigPath() (string, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return expandPath(env), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Duration is a time.Duration that unmarshals from yaml strings like "1h"
type Duration time.Duration

// UnmarshalYAML parses Go duration syntax
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders Go duration syntax
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server      ServerConfig    `yaml:"server,omitempty"`
	RateLimit   RateLimitConfig `yaml:"rate_limit,omitempty"`
	Tools       ToolsConfig     `yaml:"tools,omitempty"`
	Convert     ConvertConfig   `yaml:"convert,omitempty"`
	Maintenance Maintenance     `yaml:"maintenance,omitempty"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port,omitempty"`

	// CORSOrigins are allowed browser origins beyond the localhost defaults
	CORSOrigins []string `yaml:"cors_origins,omitempty"`

	// MaxConcurrent bounds simultaneous conversions (default: 4)
	MaxConcurrent int `yaml:"max_concurrent,omitempty"`
}

// RateLimitConfig holds the admission windows
type RateLimitConfig struct {
	// Window/Ceiling gate downloads (default: 5 per hour per client)
	Window  Duration `yaml:"window,omitempty"`
	Ceiling int      `yaml:"ceiling,omitempty"`

	// AnalyzeWindow/AnalyzeCeiling gate metadata lookups (default: 20 per minute)
	AnalyzeWindow  Duration `yaml:"analyze_window,omitempty"`
	AnalyzeCeiling int      `yaml:"analyze_ceiling,omitempty"`

	// RedisAddr enables the Redis-backed store when set (e.g. "localhost:6379")
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
}

// ToolsConfig points at the external tools
type ToolsConfig struct {
	// YTDLPPath overrides the yt-dlp binary location (default: PATH lookup)
	YTDLPPath string `yaml:"ytdlp_path,omitempty"`

	// FFmpegPath overrides the ffmpeg binary location (default: PATH lookup)
	FFmpegPath string `yaml:"ffmpeg_path,omitempty"`

	// CookieFile is the operator-provisioned cookie jar for blocked sources
	CookieFile string `yaml:"cookie_file,omitempty"`
}

// ConvertConfig tunes the conversion pipeline
type ConvertConfig struct {
	// Timeout is the wall-clock ceiling per conversion (default: 10m)
	Timeout Duration `yaml:"timeout,omitempty"`

	// DefaultBitrate is used when a download request names no bitrate (default: 192)
	DefaultBitrate int `yaml:"default_bitrate,omitempty"`

	// BassGainDB is the bass_boost low-frequency gain (default: 10)
	BassGainDB float64 `yaml:"bass_gain_db,omitempty"`

	// NightcoreRate is the nightcore tempo/pitch multiplier (default: 1.25)
	NightcoreRate float64 `yaml:"nightcore_rate,omitempty"`
}

// Maintenance is surfaced to clients via /health; purely informational
type Maintenance struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// DefaultConfig returns a config with the documented defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          8080,
			MaxConcurrent: 4,
		},
		RateLimit: RateLimitConfig{
			Window:         Duration(time.Hour),
			Ceiling:        5,
			AnalyzeWindow:  Duration(time.Minute),
			AnalyzeCeiling: 20,
		},
		Convert: ConvertConfig{
			Timeout:        Duration(10 * time.Minute),
			DefaultBitrate: 192,
			BassGainDB:     10,
			NightcoreRate:  1.25,
		},
	}
}

// Exists checks if the config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads and parses the config file, then fills unset fields with defaults
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.Tools.CookieFile = expandPath(cfg.Tools.CookieFile)
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault loads the config if it exists, otherwise returns defaults
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	return cfg
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.MaxConcurrent <= 0 {
		c.Server.MaxConcurrent = d.Server.MaxConcurrent
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = d.RateLimit.Window
	}
	if c.RateLimit.Ceiling <= 0 {
		c.RateLimit.Ceiling = d.RateLimit.Ceiling
	}
	if c.RateLimit.AnalyzeWindow == 0 {
		c.RateLimit.AnalyzeWindow = d.RateLimit.AnalyzeWindow
	}
	if c.RateLimit.AnalyzeCeiling <= 0 {
		c.RateLimit.AnalyzeCeiling = d.RateLimit.AnalyzeCeiling
	}
	if c.Convert.Timeout == 0 {
		c.Convert.Timeout = d.Convert.Timeout
	}
	if c.Convert.DefaultBitrate <= 0 {
		c.Convert.DefaultBitrate = d.Convert.DefaultBitrate
	}
	if c.Convert.BassGainDB == 0 {
		c.Convert.BassGainDB = d.Convert.BassGainDB
	}
	if c.Convert.NightcoreRate == 0 {
		c.Convert.NightcoreRate = d.Convert.NightcoreRate
	}
}

// Save writes the config to its standard path
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# vibestream configuration file\n# Run 'vibestream config init' to regenerate with defaults\n\n"
	return os.WriteFile(configPath, []byte(header+string(data)), 0644)
}

// SavePath returns the path where config will be saved
func SavePath() string {
	if path, err := ConfigPath(); err == nil {
		return path
	}
	return ConfigFileName
}

// Init creates a new config.yml with default values
func Init() error {
	if Exists() {
		path, _ := ConfigPath()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}

// expandPath expands a leading tilde to the user's home directory. Both
// separator styles are handled so a config written on Windows keeps working
// elsewhere.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}
