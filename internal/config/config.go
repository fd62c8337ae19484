// Package config loads the TOML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gregLibert/card-id/pkg/cardid"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "setting.toml"

// Config mirrors setting.toml.
type Config struct {
	// IsCepas is the legacy profile switch, used when Profile is empty.
	IsCepas      bool   `toml:"is_cepas"`
	Profile      string `toml:"profile"`
	StrictSelect bool   `toml:"strict_select"`

	Reader   Reader   `toml:"reader"`
	Workbook Workbook `toml:"workbook"`
	Sentry   Sentry   `toml:"sentry"`

	// Unknown lists keys present in the file that nothing reads.
	Unknown []string `toml:"-"`
}

type Reader struct {
	Name           string   `toml:"name"`
	OpenAttempts   int      `toml:"open_attempts"`
	OpenRetryDelay Duration `toml:"open_retry_delay"`
}

type Workbook struct {
	Path       string `toml:"path"`
	Sheet      string `toml:"sheet"`
	UserColumn int    `toml:"user_column"`
	IDColumn   int    `toml:"id_column"`
	MaxRows    int    `toml:"max_rows"`
}

type Sentry struct {
	DSN         string `toml:"dsn"`
	Environment string `toml:"environment"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Reader: Reader{
			OpenAttempts:   1,
			OpenRetryDelay: Duration{500 * time.Millisecond},
		},
		Workbook: Workbook{
			Path:       "test2.xlsx",
			Sheet:      "data",
			UserColumn: 1,
			IDColumn:   6,
			MaxRows:    100,
		},
		Sentry: Sentry{
			Environment: "production",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	for _, key := range md.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, key.String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// CardProfile resolves the profile: an explicit profile name wins over is_cepas.
func (c *Config) CardProfile() (cardid.Profile, error) {
	if c.Profile != "" {
		return cardid.ParseProfile(c.Profile)
	}
	return cardid.ProfileFromFlag(c.IsCepas), nil
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	if _, err := c.CardProfile(); err != nil {
		return err
	}
	if c.Reader.OpenAttempts < 1 {
		return fmt.Errorf("reader.open_attempts must be at least 1, got %d", c.Reader.OpenAttempts)
	}
	if c.Reader.OpenRetryDelay.Duration < 0 {
		return fmt.Errorf("reader.open_retry_delay must not be negative")
	}

	w := c.Workbook
	if w.Path == "" || w.Sheet == "" {
		return errors.New("workbook.path and workbook.sheet are required")
	}
	if w.UserColumn < 1 || w.IDColumn < 1 {
		return fmt.Errorf("workbook columns start at 1, got user_column=%d id_column=%d", w.UserColumn, w.IDColumn)
	}
	if w.UserColumn == w.IDColumn {
		return errors.New("workbook.user_column and workbook.id_column must differ")
	}
	if w.MaxRows < 1 {
		return fmt.Errorf("workbook.max_rows must be at least 1, got %d", w.MaxRows)
	}
	return nil
}
