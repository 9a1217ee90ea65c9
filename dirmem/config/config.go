package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/dirmem/dirmem"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Memory   MemoryConfig   `mapstructure:"memory"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Query    QueryConfig    `mapstructure:"query"`
	Server   ServerConfig   `mapstructure:"server"`
	Files    FilesConfig    `mapstructure:"files"`
	Log      LogConfig      `mapstructure:"log"`
}

// MemoryConfig locates the persisted memory document.
type MemoryConfig struct {
	DocumentDir  string `mapstructure:"documentDir"`
	DocumentFile string `mapstructure:"documentFile"`
	BackupSuffix string `mapstructure:"backupSuffix"`
}

// SnapshotConfig tunes directory traversal.
type SnapshotConfig struct {
	IgnoreFile string `mapstructure:"ignoreFile"`
}

// QueryConfig holds relevance query settings.
type QueryConfig struct {
	Marker string `mapstructure:"marker"`
}

// ServerConfig describes the tool server identity.
type ServerConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// FilesConfig bounds the read_files fan-out.
type FilesConfig struct {
	MaxConcurrency int `mapstructure:"maxConcurrency"`
}

// LogConfig stores logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DocumentPath returns the default memory document location.
func (c *Config) DocumentPath() string {
	return filepath.Join(c.Memory.DocumentDir, c.Memory.DocumentFile)
}

// Default returns a Config populated with the built-in defaults only.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			DocumentDir:  internal.DefaultDocumentDir,
			DocumentFile: internal.DefaultDocumentFile,
			BackupSuffix: internal.DefaultBackupSuffix,
		},
		Snapshot: SnapshotConfig{IgnoreFile: internal.DefaultIgnoreFile},
		Query:    QueryConfig{Marker: internal.DefaultQueryMarker},
		Server:   ServerConfig{Name: internal.DefaultAppName, Version: internal.DefaultAppVersion},
		Files:    FilesConfig{MaxConcurrency: internal.DefaultFileReadWorkers},
		Log:      LogConfig{Level: internal.DefaultLogLevel},
	}
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("memory.documentDir", internal.DefaultDocumentDir)
	v.SetDefault("memory.documentFile", internal.DefaultDocumentFile)
	v.SetDefault("memory.backupSuffix", internal.DefaultBackupSuffix)
	v.SetDefault("snapshot.ignoreFile", internal.DefaultIgnoreFile)
	v.SetDefault("query.marker", internal.DefaultQueryMarker)
	v.SetDefault("server.name", internal.DefaultAppName)
	v.SetDefault("server.version", internal.DefaultAppVersion)
	v.SetDefault("files.maxConcurrency", internal.DefaultFileReadWorkers)
	v.SetDefault("log.level", internal.DefaultLogLevel)

	v.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	v.AutomaticEnv()                                   // e.g. DIRMEM_MEMORY_DOCUMENTDIR
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // memory.documentDir -> MEMORY_DOCUMENTDIR

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: defaults and environment apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if cfg.Files.MaxConcurrency < 1 {
		cfg.Files.MaxConcurrency = 1
	}

	return &cfg, nil
}
