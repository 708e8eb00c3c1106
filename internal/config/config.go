// Package config loads the confhub TOML configuration and derives the
// filesystem paths the host and clients share.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Encodings accepted for the backing properties file.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

// FileName is the backing file's name inside the host's data directory.
const FileName = "config.properties"

type Config struct {
	Host Host `toml:"host"`
	Log  Log  `toml:"log"`
}

type Host struct {
	// Authority names the host instance; clients address requests to it.
	// It doubles as the socket file's base name.
	Authority string `toml:"authority"`
	DataDir   string `toml:"data_dir"`
	// SocketDir overrides where the unix socket lives. Empty means
	// $XDG_RUNTIME_DIR, falling back to the system temp directory.
	SocketDir string `toml:"socket_dir"`
	Encoding  string `toml:"encoding"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Host: Host{
			Authority: "confhub",
			DataDir:   "~/.confhub",
			Encoding:  EncodingUTF8,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML config file over the defaults. If path is empty the
// default location is tried and silently skipped when absent.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = expandHome("~/.confhub/config.toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the system cannot work with.
func (c *Config) Validate() error {
	if c.Host.Authority == "" {
		return fmt.Errorf("host.authority must not be empty")
	}
	if strings.ContainsAny(c.Host.Authority, "/\x00") {
		return fmt.Errorf("host.authority %q must not contain path separators", c.Host.Authority)
	}
	switch strings.ToLower(c.Host.Encoding) {
	case EncodingUTF8, EncodingLatin1:
	default:
		return fmt.Errorf("host.encoding %q: want %q or %q", c.Host.Encoding, EncodingUTF8, EncodingLatin1)
	}
	return nil
}

// FilePath returns the backing properties file path. The name is fixed;
// only the data directory moves.
func (c *Config) FilePath() string {
	return filepath.Join(expandHome(c.Host.DataDir), FileName)
}

// SocketPath returns the unix socket path a host with this authority
// listens on. Clients derive the same path from the same config.
func (c *Config) SocketPath() string {
	dir := c.Host.SocketDir
	if dir == "" {
		dir = os.Getenv("XDG_RUNTIME_DIR")
	}
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(expandHome(dir), c.Host.Authority+".sock")
}

// ExpandHome resolves a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
