package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Overrides carries the values the command line supplied explicitly; a
// zero value means "not set, fall through to file/env/default". Positional
// CLI arguments and flags are merged into this before Load runs, so the
// `<port> [<host> [<workers>]]` shorthand and the long flags both still
// allow file/env configuration for everything else.
type Overrides struct {
	Host    string
	Port    int
	Workers int

	DocumentRoot       string
	UploadSubdir       string
	IdleTimeout        string
	MaxRequestsPerConn int
	MaxRequestBytes    int
	Backlog            int
	MetricsAddr        string
}

// Load builds a ServerConfig the way the broader example pack's viper
// loaders do: defaults, then an optional server.yaml/server.json (current
// directory or /etc/httpserver/), then HTTPSERVER_*-prefixed environment
// variables, then explicit CLI overrides (highest priority).
func Load(o Overrides) (*ServerConfig, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("host", defaults.Host)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("document_root", defaults.DocumentRoot)
	v.SetDefault("upload_subdir", defaults.UploadSubdir)
	v.SetDefault("idle_timeout", defaults.IdleTimeout)
	v.SetDefault("max_requests_per_connection", defaults.MaxRequestsPerConn)
	v.SetDefault("max_request_bytes", defaults.MaxRequestBytes)
	v.SetDefault("backlog", defaults.Backlog)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("metrics_addr", "")

	v.SetConfigName("server")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/httpserver/")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("HTTPSERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.Host != "" {
		v.Set("host", o.Host)
	}
	if o.Port != 0 {
		v.Set("port", o.Port)
	}
	if o.Workers != 0 {
		v.Set("workers", o.Workers)
	}
	if o.DocumentRoot != "" {
		v.Set("document_root", o.DocumentRoot)
	}
	if o.UploadSubdir != "" {
		v.Set("upload_subdir", o.UploadSubdir)
	}
	if o.IdleTimeout != "" {
		v.Set("idle_timeout", o.IdleTimeout)
	}
	if o.MaxRequestsPerConn != 0 {
		v.Set("max_requests_per_connection", o.MaxRequestsPerConn)
	}
	if o.MaxRequestBytes != 0 {
		v.Set("max_request_bytes", o.MaxRequestBytes)
	}
	if o.Backlog != 0 {
		v.Set("backlog", o.Backlog)
	}
	if o.MetricsAddr != "" {
		v.Set("metrics_addr", o.MetricsAddr)
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
