package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// FileName is the configuration file inside the config directory.
const FileName = "config.toml"

// Blob backends.
const (
	BlobGCS    = "gcs"
	BlobLocal  = "local"
	BlobMemory = "memory"
)

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText writes the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the whole configuration file.
type Config struct {
	Storage   StorageConfig        `toml:"storage"`
	Blob      BlobConfig           `toml:"blob"`
	Google    GoogleConfig         `toml:"google"`
	OCR       OCRConfig            `toml:"ocr"`
	Sources   SourcesConfig        `toml:"sources"`
	Scheduler SchedulerConfig      `toml:"scheduler"`
	Jobs      map[string]JobConfig `toml:"jobs,omitempty"`
	Server    ServerConfig         `toml:"server"`
}

// StorageConfig locates the record database.
type StorageConfig struct {
	// Path is the data directory. Empty means ~/.drawsync/data.
	Path string `toml:"path,omitempty"`
}

// BlobConfig selects where documents and OCR output live.
type BlobConfig struct {
	Backend string `toml:"backend"`
	Bucket  string `toml:"bucket,omitempty"`
	Dir     string `toml:"dir,omitempty"`
}

// GoogleConfig holds credentials for Cloud Storage and Cloud Vision.
type GoogleConfig struct {
	// CredentialsFile is a service account key. Empty uses Application
	// Default Credentials.
	CredentialsFile string `toml:"credentials_file,omitempty"`
}

// OCRConfig controls the recognition fallback.
type OCRConfig struct {
	Enabled      bool     `toml:"enabled"`
	PollInterval Duration `toml:"poll_interval"`
	MinTextLen   int      `toml:"min_text_len"`
}

// SourceConfig is one upstream site.
type SourceConfig struct {
	BaseURL    string   `toml:"base_url,omitempty"`
	RatePerSec float64  `toml:"rate_per_sec,omitempty"`
	Burst      int      `toml:"burst,omitempty"`
	Timeout    Duration `toml:"timeout,omitempty"`
}

// SourcesConfig holds the upstream sites.
type SourcesConfig struct {
	GLO     SourceConfig `toml:"glo"`
	Mirror  SourceConfig `toml:"mirror"`
	Webpage SourceConfig `toml:"webpage"`
}

// SchedulerConfig is the master switch for scheduled jobs.
type SchedulerConfig struct {
	Enabled bool `toml:"enabled"`
}

// JobConfig overrides one job's schedule and window. Unset fields keep
// the job defaults.
type JobConfig struct {
	Enabled    *bool    `toml:"enabled,omitempty"`
	Interval   Duration `toml:"interval,omitempty"`
	Days       *int     `toml:"days,omitempty"`
	Pages      *int     `toml:"pages,omitempty"`
	Limit      *int     `toml:"limit,omitempty"`
	MaxUpserts *int     `toml:"max_upserts,omitempty"`
	Force      bool     `toml:"force,omitempty"`
	Timeout    Duration `toml:"timeout,omitempty"`
}

// ServerConfig is used by the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// InboxDir is watched for uploaded result sheets. Empty disables the watcher.
	InboxDir string `toml:"inbox_dir,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Blob: BlobConfig{Backend: BlobLocal},
		OCR: OCRConfig{
			Enabled:      true,
			PollInterval: Duration(3 * time.Second),
			MinTextLen:   50,
		},
		Scheduler: SchedulerConfig{Enabled: true},
		Server:    ServerConfig{Addr: "127.0.0.1:8787"},
	}
}

// DefaultDir returns ~/.drawsync.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".drawsync"), nil
}

// DefaultPath returns ~/.drawsync/config.toml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the configuration at path, or DefaultPath when path is empty.
// Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, path, strict.String())
		}
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	switch c.Blob.Backend {
	case BlobGCS:
		if c.Blob.Bucket == "" {
			return fmt.Errorf("%w: blob.bucket is required for the gcs backend", domain.ErrInvalidInput)
		}
	case BlobLocal, BlobMemory:
	default:
		return fmt.Errorf("%w: unknown blob backend %q", domain.ErrInvalidInput, c.Blob.Backend)
	}
	if c.OCR.MinTextLen < 0 {
		return fmt.Errorf("%w: ocr.min_text_len must not be negative", domain.ErrInvalidInput)
	}
	for name := range c.Jobs {
		job := domain.JobName(name)
		if !slices.Contains(domain.Jobs(), job) {
			return fmt.Errorf("%w: unknown job %q", domain.ErrInvalidInput, name)
		}
		if _, err := c.JobOptions(job); err != nil {
			return err
		}
	}
	return nil
}

// JobOptions returns the configured window for job. A window value that
// is set but not positive is domain.ErrInvalidWindow.
func (c *Config) JobOptions(job domain.JobName) (domain.JobOptions, error) {
	jc, ok := c.Jobs[string(job)]
	if !ok {
		return domain.JobOptions{}, nil
	}

	opts := domain.JobOptions{Force: jc.Force, Timeout: jc.Timeout.Std()}
	for _, f := range []struct {
		name string
		src  *int
		dst  *int
	}{
		{"days", jc.Days, &opts.Days},
		{"pages", jc.Pages, &opts.Pages},
		{"limit", jc.Limit, &opts.Limit},
		{"max_upserts", jc.MaxUpserts, &opts.MaxUpserts},
	} {
		if f.src == nil {
			continue
		}
		if *f.src <= 0 {
			return domain.JobOptions{}, fmt.Errorf("%w: jobs.%s.%s must be positive, got %d", domain.ErrInvalidWindow, job, f.name, *f.src)
		}
		*f.dst = *f.src
	}
	return opts, nil
}

// SchedulerConfig merges the file's overrides into the default cadence.
func (c *Config) SchedulerConfig() (domain.SchedulerConfig, error) {
	sc := domain.DefaultSchedulerConfig()
	sc.Enabled = c.Scheduler.Enabled

	for _, job := range domain.Jobs() {
		task := sc.GetTaskConfig(string(job))
		if jc, ok := c.Jobs[string(job)]; ok {
			if jc.Enabled != nil {
				task.Enabled = *jc.Enabled
			}
			if jc.Interval > 0 {
				task.Interval = jc.Interval.Std()
			}
		}
		opts, err := c.JobOptions(job)
		if err != nil {
			return domain.SchedulerConfig{}, err
		}
		task.Options = opts
		sc.TaskConfigs[string(job)] = task
	}
	return sc, nil
}
