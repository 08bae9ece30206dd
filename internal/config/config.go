package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is tally's runtime configuration.
type Config struct {
	Server         string
	Role           string
	SessionCookie  string
	LogDir         string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	MaxInFlight    int
	ResetPolicy    string
	RefreshEvery   time.Duration
}

const (
	defaultConfigPath     = "~/.config/tally/config.toml"
	defaultLogDir         = "~/.local/share/tally/logs"
	defaultServer         = "127.0.0.1:5001"
	defaultRole           = "child"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultRequestTimeout = 10 * time.Second
	defaultRefreshEvery   = 30 * time.Second
	defaultResetPolicy    = "after_settle"
)

// Environment overrides, applied after the file.
const (
	EnvServer   = "TALLY_SERVER"
	EnvRole     = "TALLY_ROLE"
	EnvSession  = "TALLY_SESSION"
	EnvLogLevel = "TALLY_LOG_LEVEL"
)

type fileConfig struct {
	Server         string `toml:"server"`
	Role           string `toml:"role"`
	SessionCookie  string `toml:"session_cookie"`
	LogDir         string `toml:"log_dir"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	RequestTimeout int    `toml:"request_timeout"`
	MaxInFlight    int    `toml:"max_in_flight"`
	ResetPolicy    string `toml:"reset_policy"`
	RefreshSeconds int    `toml:"refresh_seconds"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server:         defaultServer,
		Role:           defaultRole,
		LogDir:         mustExpand(defaultLogDir),
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
		RequestTimeout: defaultRequestTimeout,
		ResetPolicy:    defaultResetPolicy,
		RefreshEvery:   defaultRefreshEvery,
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing, then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.merge(raw)
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) merge(raw fileConfig) {
	setString(&c.Server, raw.Server)
	setString(&c.Role, strings.ToLower(raw.Role))
	setString(&c.SessionCookie, raw.SessionCookie)
	setString(&c.LogLevel, strings.ToLower(raw.LogLevel))
	setString(&c.LogFormat, strings.ToLower(raw.LogFormat))
	setString(&c.ResetPolicy, strings.ToLower(raw.ResetPolicy))
	if dir := strings.TrimSpace(raw.LogDir); dir != "" {
		c.LogDir = mustExpand(dir)
	}
	if raw.RequestTimeout != 0 {
		c.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if raw.RefreshSeconds != 0 {
		c.RefreshEvery = time.Duration(raw.RefreshSeconds) * time.Second
	}
	c.MaxInFlight = raw.MaxInFlight
}

func (c *Config) applyEnv() {
	setString(&c.Server, os.Getenv(EnvServer))
	setString(&c.Role, strings.ToLower(os.Getenv(EnvRole)))
	setString(&c.SessionCookie, os.Getenv(EnvSession))
	setString(&c.LogLevel, strings.ToLower(os.Getenv(EnvLogLevel)))
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Server) == "" {
		problems = append(problems, "server cannot be empty")
	}
	if !oneOf(c.Role, "parent", "child") {
		problems = append(problems, fmt.Sprintf("invalid role %q: must be parent or child", c.Role))
	}
	if !oneOf(c.LogLevel, "debug", "info", "warn", "warning", "error") {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}
	if !oneOf(c.LogFormat, "text", "json") {
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be text or json", c.LogFormat))
	}
	if !oneOf(c.ResetPolicy, "after_settle", "full_success") {
		problems = append(problems, fmt.Sprintf("invalid reset policy %q: must be after_settle or full_success", c.ResetPolicy))
	}
	if c.RequestTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	}
	if c.RefreshEvery < time.Second {
		problems = append(problems, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshEvery))
	}
	if c.MaxInFlight < 0 {
		problems = append(problems, "max_in_flight cannot be negative: "+strconv.Itoa(c.MaxInFlight))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// LogPath returns the path tally writes its own log to.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/tally.log")
	}
	return filepath.Join(c.LogDir, "tally.log")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
