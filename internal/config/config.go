// Package config loads schemigrate settings from a config file, the
// environment and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem configuration is read from.
var AppFs = afero.NewOsFs()

const (
	// FileName is the config file name without extension.
	FileName = ".schemigrate"
	// EnvPrefix prefixes environment overrides, e.g. SCHEMIGRATE_SCHEMA_FILE.
	EnvPrefix = "SCHEMIGRATE"
)

// Keys.
const (
	KeySchemaFile      = "schema_file"
	KeyMigrationsDir   = "migrations_dir"
	KeySnapshotFile    = "snapshot_file"
	KeyHistoryURL      = "history_url"
	KeyTemplate        = "template"
	KeyDebug           = "debug"
	KeyRequiredVersion = "required_version"
)

// historyDisabled values turn history recording off.
var historyDisabled = map[string]bool{"off": true, "none": true, "false": true}

// Config holds the application configuration
type Config struct {
	SchemaFile    string
	MigrationsDir string
	// SnapshotFile is empty when the snapshot lives next to the schema file.
	SnapshotFile string
	// HistoryURL is empty when history recording is disabled.
	HistoryURL      string
	Template        string
	Debug           bool
	RequiredVersion string
	// File is the config file that was read, if any.
	File string
}

// Load loads configuration from various sources. An explicit configFile must
// exist; otherwise .schemigrate.yaml is searched in the working directory and
// the home directory.
func Load(configFile string) (*Config, error) {
	if err := loadDotEnv(".env", false); err != nil {
		return nil, err
	}
	if err := loadDotEnv(".env.local", true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "schemigrate"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeySchemaFile, "schema.json")
	v.SetDefault(KeyMigrationsDir, "migrations")
	v.SetDefault(KeyTemplate, "db-migrate")
	v.SetDefault(KeyDebug, false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		SchemaFile:      v.GetString(KeySchemaFile),
		MigrationsDir:   v.GetString(KeyMigrationsDir),
		SnapshotFile:    v.GetString(KeySnapshotFile),
		Template:        v.GetString(KeyTemplate),
		Debug:           v.GetBool(KeyDebug),
		RequiredVersion: v.GetString(KeyRequiredVersion),
		File:            v.ConfigFileUsed(),
	}

	cfg.HistoryURL = DefaultHistoryURL(cfg.MigrationsDir)
	if v.IsSet(KeyHistoryURL) {
		cfg.HistoryURL = strings.TrimSpace(v.GetString(KeyHistoryURL))
		if historyDisabled[strings.ToLower(cfg.HistoryURL)] {
			cfg.HistoryURL = ""
		}
	}

	return cfg, nil
}

// DefaultHistoryURL is the SQLite history database kept in the migrations
// directory.
func DefaultHistoryURL(migrationsDir string) string {
	return "sqlite://" + filepath.Join(migrationsDir, ".history.db")
}

// Save writes cfg as YAML to path.
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(AppFs)

	v.Set(KeySchemaFile, cfg.SchemaFile)
	v.Set(KeyMigrationsDir, cfg.MigrationsDir)
	if cfg.SnapshotFile != "" {
		v.Set(KeySnapshotFile, cfg.SnapshotFile)
	}
	if cfg.HistoryURL == "" {
		v.Set(KeyHistoryURL, "off")
	} else if cfg.HistoryURL != DefaultHistoryURL(cfg.MigrationsDir) {
		v.Set(KeyHistoryURL, cfg.HistoryURL)
	}
	v.Set(KeyTemplate, cfg.Template)
	if cfg.RequiredVersion != "" {
		v.Set(KeyRequiredVersion, cfg.RequiredVersion)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := AppFs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	v.SetConfigType("yaml")
	return v.WriteConfigAs(path)
}

// loadDotEnv exports the variables of a .env file. Without override, variables
// already in the environment win.
func loadDotEnv(path string, override bool) error {
	f, err := AppFs.Open(path)
	if err != nil {
		// A missing or unreadable .env file is not an error.
		return nil
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for key, value := range vars {
		if _, exists := os.LookupEnv(key); exists && !override {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}
