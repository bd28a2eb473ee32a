package model

// Backend names accepted in config.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the user's cardman configuration.
// Stored at ~/.config/cardman/config.toml; every field can be overridden from
// the environment.
// Schema changes require a version bump, see internal/version/version.go.
type Config struct {
	CardmanSchema string `toml:"cardman_schema"`
	Backend       string `toml:"backend,omitempty" env:"CARDMAN_BACKEND"`
	DataDir       string `toml:"data_dir,omitempty" env:"CARDMAN_DATA_DIR"`
	StorageKey    string `toml:"storage_key,omitempty" env:"CARDMAN_STORAGE_KEY"`
	QuotaBytes    *int64 `toml:"quota_bytes,omitempty" env:"CARDMAN_QUOTA_BYTES"`
	LogLevel      string `toml:"log_level,omitempty" env:"CARDMAN_LOG_LEVEL"`
	LogFormat     string `toml:"log_format,omitempty" env:"CARDMAN_LOG_FORMAT"`
	Editor        string `toml:"editor,omitempty" env:"CARDMAN_EDITOR"`
	Port          int    `toml:"port,omitempty" env:"CARDMAN_PORT"`
}

// Defaults used when neither the config file nor the environment sets a value.
const (
	DefaultStorageKey       = "cards-data"
	DefaultQuotaBytes int64 = 5 * 1024 * 1024
	DefaultLogLevel         = "warn"
	DefaultLogFormat        = "console"
	DefaultPort             = 3000
)

// ApplyDefaults fills unset fields. dataDir is the platform default data
// directory resolved by the config package.
func (c *Config) ApplyDefaults(dataDir string) {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.DataDir == "" {
		c.DataDir = dataDir
	}
	if c.StorageKey == "" {
		c.StorageKey = DefaultStorageKey
	}
	if c.QuotaBytes == nil {
		q := DefaultQuotaBytes
		c.QuotaBytes = &q
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
}

// Quota returns the configured quota, treating unset as the default.
func (c *Config) Quota() int64 {
	if c.QuotaBytes == nil {
		return DefaultQuotaBytes
	}
	return *c.QuotaBytes
}
