package config

import (
	"os"
	"path/filepath"
)

const (
	AppDir         = "cardman"
	ConfigFileName = "config.toml"
	KVDir          = "kv"
	SQLiteFileName = "cardman.db"
)

// Paths provides path resolution for cardman data files.
type Paths struct {
	dataDir string
}

// NewPaths creates a new Paths resolver rooted at dataDir.
func NewPaths(dataDir string) *Paths {
	return &Paths{dataDir: dataDir}
}

// DataDir returns the root directory for cardman data.
func (p *Paths) DataDir() string {
	return p.dataDir
}

// KVDir returns the directory used by the file storage backend.
func (p *Paths) KVDir() string {
	return filepath.Join(p.dataDir, KVDir)
}

// SQLitePath returns the database file used by the sqlite storage backend.
func (p *Paths) SQLitePath() string {
	return filepath.Join(p.dataDir, SQLiteFileName)
}

// ConfigPath returns the path to the user config file.
// Order: $XDG_CONFIG_HOME/cardman > ~/.config/cardman
func ConfigPath() string {
	dir := ConfigDirPath()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, ConfigFileName)
}

// ConfigDirPath returns the directory for the user config.
func ConfigDirPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppDir)
}

// DefaultDataDir returns the directory cards are stored in when config
// doesn't say otherwise.
// Order: $XDG_DATA_HOME/cardman > ~/.local/share/cardman > ./.cardman
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppDir
	}
	return filepath.Join(home, ".local", "share", AppDir)
}
