// Package config loads pnp settings from a YAML file, PNP_* environment
// variables and command-line overrides, and persists OAuth tokens next to
// that file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configDir  = ".pnp-client"
	configFile = "config.yaml"

	// EnvPrefix is prepended to every environment override, e.g. PNP_SITE_URL.
	EnvPrefix = "PNP"
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "PNP_CONFIG_PATH"

	// DefaultClientID is the multi-tenant PnP Management Shell application.
	DefaultClientID = "31359c7f-bd7e-475c-86db-fdb8c937548e"
	DefaultTenant   = "organizations"
	DefaultGraphURL = "https://graph.microsoft.com/v1.0"
	DefaultOutput   = "table"
)

// ErrNoSite is returned when a SharePoint command runs without a site URL.
var ErrNoSite = errors.New("no SharePoint site configured: set site_url, PNP_SITE_URL or --site")

// HTTPConfig tunes the transport.
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxRetryDelay time.Duration `mapstructure:"max_retry_delay"`
	RateLimit     float64       `mapstructure:"rate_limit"`
	Burst         int           `mapstructure:"burst"`
}

// DefaultHTTPConfig returns the transport defaults.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Second,
		MaxRetryDelay: 10 * time.Second,
		RateLimit:     10,
		Burst:         5,
	}
}

// Configuration holds every persisted setting.
type Configuration struct {
	Tenant       string     `mapstructure:"tenant"`
	ClientID     string     `mapstructure:"client_id"`
	ClientSecret string     `mapstructure:"client_secret"`
	SiteURL      string     `mapstructure:"site_url"`
	GraphURL     string     `mapstructure:"graph_url"`
	Output       string     `mapstructure:"output"`
	LogFormat    string     `mapstructure:"log_format"`
	Debug        bool       `mapstructure:"debug"`
	HTTP         HTTPConfig `mapstructure:"http"`

	path string
}

// Path returns the config file the configuration was loaded from.
func (c *Configuration) Path() string {
	return c.path
}

// Dir returns the directory holding the config file and token state.
func (c *Configuration) Dir() string {
	return filepath.Dir(c.path)
}

// AppOnly reports whether a client secret is configured, which switches
// authentication to the client credentials flow.
func (c *Configuration) AppOnly() bool {
	return c.ClientSecret != ""
}

// RequireSite returns the site URL or ErrNoSite.
func (c *Configuration) RequireSite() (string, error) {
	if c.SiteURL == "" {
		return "", ErrNoSite
	}
	return c.SiteURL, nil
}

// DefaultPath returns ~/.pnp-client/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// resolvePath picks the explicit path, then PNP_CONFIG_PATH, then the default.
func resolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	return DefaultPath()
}

func setDefaults(v *viper.Viper) {
	h := DefaultHTTPConfig()
	v.SetDefault("tenant", DefaultTenant)
	v.SetDefault("client_id", DefaultClientID)
	v.SetDefault("client_secret", "")
	v.SetDefault("site_url", "")
	v.SetDefault("graph_url", DefaultGraphURL)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("log_format", "text")
	v.SetDefault("debug", false)
	v.SetDefault("http.timeout", h.Timeout)
	v.SetDefault("http.retry_attempts", h.RetryAttempts)
	v.SetDefault("http.retry_delay", h.RetryDelay)
	v.SetDefault("http.max_retry_delay", h.MaxRetryDelay)
	v.SetDefault("http.rate_limit", h.RateLimit)
	v.SetDefault("http.burst", h.Burst)
}

// Load reads the configuration at path (see resolvePath). A missing file is
// not an error: defaults and environment overrides still apply.
func Load(path string) (*Configuration, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(resolved)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", resolved, err)
		}
	}

	cfg := &Configuration{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", resolved, err)
	}
	cfg.path = resolved
	return cfg, nil
}

// LoadOrCreate loads the configuration from the default location.
func LoadOrCreate() (*Configuration, error) {
	return Load("")
}
