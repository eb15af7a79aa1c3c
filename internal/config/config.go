// Package config layers defaults, a dotenv file, the process environment
// and command-line flags into a typed Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"drivebak/internal/application"
	"drivebak/internal/domain"
)

const (
	DefaultAlgorithm = "sha256"
	DefaultEnvFile   = ".env"

	// JournalOff disables the run journal
	JournalOff = "off"
)

// Environment variables read by Load
const (
	EnvSourcePath   = "BACKUP_PATH"
	EnvSerial       = "BACKUP_DRIVE_SERIAL"
	EnvRelativePath = "BACKUP_RELATIVE_PATH"
	EnvAlgorithm    = "BACKUP_HASH_ALGO"
	EnvJournal      = "BACKUP_JOURNAL"
	EnvExclude      = "BACKUP_EXCLUDE"
)

// Config keys, also the names of the flags they are bound to
const (
	KeySerial       = "serial"
	KeyRelativePath = "relative-path"
	KeyAlgorithm    = "algorithm"
	KeyExclude      = "exclude"
	KeyJournal      = "journal"
	keySource       = "source"
)

var envKeys = map[string]string{
	keySource:       EnvSourcePath,
	KeySerial:       EnvSerial,
	KeyRelativePath: EnvRelativePath,
	KeyAlgorithm:    EnvAlgorithm,
	KeyJournal:      EnvJournal,
	KeyExclude:      EnvExclude,
}

// Config is everything a backup run is configured with
type Config struct {
	SourcePath   string
	Serial       domain.SerialNumber // zero when unset
	RelativePath string
	Algorithm    string
	Excludes     []string

	// JournalPath is "" for the default location or JournalOff
	JournalPath string
}

// JournalEnabled reports whether runs should be recorded
func (c *Config) JournalEnabled() bool {
	return !strings.EqualFold(c.JournalPath, JournalOff)
}

// LoadOptions control where Load looks
type LoadOptions struct {
	// EnvFile is the dotenv file to read; "" means DefaultEnvFile
	EnvFile string

	// RequireEnvFile makes a missing EnvFile an error. A missing default
	// file is always ignored.
	RequireEnvFile bool

	// Flags are bound by name: serial, relative-path, algorithm, exclude,
	// journal. Only flags the user set override other sources.
	Flags *pflag.FlagSet

	// Source is the positional source argument; it beats every other source
	Source string

	// SkipSerial leaves Serial zero without reading it, for commands that
	// never pick a drive
	SkipSerial bool
}

// Load builds a Config. Priority, lowest first: defaults, dotenv file,
// environment, flags.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyAlgorithm, DefaultAlgorithm)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	dotenv, err := readEnvFile(opts)
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		if err := v.MergeConfigMap(dotenv); err != nil {
			return nil, &application.ConfigError{Key: "env-file", Message: err.Error()}
		}
	}

	if opts.Flags != nil {
		for _, key := range []string{KeySerial, KeyRelativePath, KeyAlgorithm, KeyExclude, KeyJournal} {
			if f := opts.Flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
				}
			}
		}
	}

	cfg := &Config{
		SourcePath:   v.GetString(keySource),
		RelativePath: v.GetString(KeyRelativePath),
		Algorithm:    strings.ToLower(strings.TrimSpace(v.GetString(KeyAlgorithm))),
		Excludes:     splitList(v.Get(KeyExclude)),
		JournalPath:  v.GetString(KeyJournal),
	}
	if opts.Source != "" {
		cfg.SourcePath = opts.Source
	}

	if opts.SkipSerial {
		return cfg, nil
	}

	if raw := strings.TrimSpace(v.GetString(KeySerial)); raw != "" {
		serial, err := application.ParseSerial(KeySerial, raw)
		if err != nil {
			return nil, err
		}
		cfg.Serial = serial
	}

	return cfg, nil
}

// readEnvFile returns the dotenv entries keyed by config key
func readEnvFile(opts LoadOptions) (map[string]any, error) {
	path := opts.EnvFile
	if path == "" {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !opts.RequireEnvFile {
			return nil, nil
		}
		return nil, &application.ConfigError{Key: "env-file", Message: err.Error()}
	}

	out := make(map[string]any)
	for key, env := range envKeys {
		if val, ok := values[env]; ok && val != "" {
			out[key] = val
		}
	}
	return out, nil
}

// splitList accepts a flag's []string or a comma-separated string
func splitList(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []string:
		parts = t
	case string:
		parts = strings.Split(t, ",")
	case []any:
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
