package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/fundrep/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Report   ReportConfig   `mapstructure:"report"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	TemplatesDir string `mapstructure:"templates_dir"` // empty = embedded templates
	APIKey       string `mapstructure:"api_key"`       // guards archive writes; empty disables
}

// UpstreamConfig holds the fund data source settings.
type UpstreamConfig struct {
	Source  string        `mapstructure:"source"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReportConfig holds report building settings.
type ReportConfig struct {
	DividendYears []int `mapstructure:"dividend_years"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ArchiveConfig selects where rendered reports are stored.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// Load reads configuration from file on top of Defaults. An empty path
// loads defaults and environment overrides only. PORT overrides
// server.port.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Support environment variable overrides
	v.SetEnvPrefix("FUNDREP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("server.port", "PORT", "FUNDREP_SERVER_PORT"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.templates_dir", d.Server.TemplatesDir)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("upstream.source", d.Upstream.Source)
	v.SetDefault("upstream.base_url", d.Upstream.BaseURL)
	v.SetDefault("upstream.timeout", d.Upstream.Timeout)
	v.SetDefault("report.dividend_years", d.Report.DividendYears)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("archive.s3.bucket", "")
	v.SetDefault("archive.s3.endpoint", "")
	v.SetDefault("archive.s3.region", "")
	v.SetDefault("archive.s3.access_key", "")
	v.SetDefault("archive.s3.secret_key", "")
	v.SetDefault("archive.s3.prefix", "")
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Upstream: UpstreamConfig{
			Source:  "toushin",
			BaseURL: "https://toushin-lib.fwg.ne.jp",
			Timeout: 30 * time.Second,
		},
		Report: ReportConfig{
			DividendYears: []int{2020, 2021},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "./data/reports",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Upstream validation
	if c.Upstream.Source == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("upstream source required"))
	}
	if c.Upstream.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("upstream base_url required"))
	}
	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream base_url must be an absolute URL, got %q", c.Upstream.BaseURL))
	}
	if c.Upstream.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream timeout must be positive, got %s", c.Upstream.Timeout))
	}

	// Report validation
	if len(c.Report.DividendYears) == 0 {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("report dividend_years required"))
	}
	seen := make(map[int]bool)
	for _, y := range c.Report.DividendYears {
		if y < 1900 || y > 9999 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("dividend year out of range: %d", y))
		}
		if seen[y] {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("duplicate dividend year: %d", y))
		}
		seen[y] = true
	}

	// Metrics validation
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path))
	}

	// Archive validation - the selected backend needs its settings
	switch c.Archive.Type {
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive path required when type is localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive s3 bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs or s3, got %q", c.Archive.Type))
	}

	return nil
}
