package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultCalendar = "calendar.ics"
	defaultDays     = 1
	defaultLogLevel = "info"
)

// Config is the configuration of the agenda command.
type Config struct {
	// Calendar is the path of the calendar file to read.
	Calendar string `yaml:"calendar"`

	// Date is the first day to print, as YYYY-MM-DD. Empty means today.
	Date string `yaml:"date"`

	// Days is how many consecutive days to print, starting at Date.
	Days int `yaml:"days"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Refresh is an optional cron expression (e.g. "0 7 * * *"). When set,
	// the command reloads the calendar and prints the agenda on that
	// schedule instead of exiting after one run.
	Refresh string `yaml:"refresh,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Calendar: defaultCalendar,
		Days:     defaultDays,
		LogLevel: defaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults.
func (c *Config) Normalize() {
	if c.Calendar == "" {
		c.Calendar = defaultCalendar
	}
	if c.Days <= 0 {
		c.Days = defaultDays
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// Validate checks the values that Normalize cannot repair.
func (c *Config) Validate() error {
	if c.Date != "" {
		if _, err := time.Parse(time.DateOnly, c.Date); err != nil {
			return fmt.Errorf("config: invalid date %q: %w", c.Date, err)
		}
	}
	if c.Refresh != "" {
		if _, err := cron.ParseStandard(c.Refresh); err != nil {
			return fmt.Errorf("config: invalid refresh schedule %q: %w", c.Refresh, err)
		}
	}
	return nil
}

// StartDate resolves Date, falling back to the day of now.
func (c *Config) StartDate(now time.Time) time.Time {
	if c.Date != "" {
		if d, err := time.Parse(time.DateOnly, c.Date); err == nil {
			return d
		}
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there with
//     0600 perms and returned.
//   - Otherwise the YAML is unmarshaled, normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fileHeader is written above the YAML so a first-run file explains itself.
const fileHeader = `# agenda configuration
#
#   calendar:  calendar file to read
#   date:      first day to print (YYYY-MM-DD, empty = today)
#   days:      number of days to print
#   log_level: debug | info | warn | error
#   refresh:   cron schedule for reprinting, e.g. "0 7 * * *" (optional)
`

// Save normalizes cfg and writes it to path with 0600 perms. The file is
// replaced atomically, so a concurrent reader sees either the old or the
// new config.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	return replaceFile(path, append([]byte(fileHeader+"\n"), body...))
}

// replaceFile writes data next to path and renames it over path,
// creating the parent directory (0700) first.
func replaceFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o600); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
