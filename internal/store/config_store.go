package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/amterp/cardman/internal/config"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/version"
	"github.com/caarlos0/env/v11"
)

// FileConfigStore implements ConfigStore using a TOML file.
// Environment variables override whatever the file says.
type FileConfigStore struct {
	path string
}

// NewConfigStore creates a config store for path. An empty path means the
// default location (see config.ConfigPath).
func NewConfigStore(path string) *FileConfigStore {
	if path == "" {
		path = config.ConfigPath()
	}
	return &FileConfigStore{path: path}
}

// Path returns the config file location.
func (s *FileConfigStore) Path() string {
	return s.path
}

// Load reads the config file, applies environment overrides and fills
// defaults. A missing file is not an error.
func (s *FileConfigStore) Load() (*model.Config, error) {
	cfg, err := s.readFile()
	if err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	cfg.ApplyDefaults(config.DefaultDataDir())
	return cfg, nil
}

func (s *FileConfigStore) readFile() (*model.Config, error) {
	cfg := &model.Config{}
	if s.path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	// Hand-written configs may omit the stamp; a wrong one is rejected.
	if cfg.CardmanSchema != "" && cfg.CardmanSchema != version.CurrentConfigSchema() {
		return nil, version.InvalidConfigSchema(s.path, cfg.CardmanSchema)
	}

	return cfg, nil
}

// Save writes the config to disk.
func (s *FileConfigStore) Save(cfg *model.Config) error {
	// Stamp current schema version
	cfg.CardmanSchema = version.CurrentConfigSchema()

	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file if it doesn't exist.
func (s *FileConfigStore) EnsureExists() error {
	if s.path == "" {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return s.Save(&model.Config{})
	}
	return nil
}
