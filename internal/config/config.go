// Package config builds the server's immutable startup parameters,
// layering defaults, an optional config file, environment variables, and
// CLI overrides the way the wider example pack's viper-backed config
// loaders do.
package config

import "time"

// ServerConfig holds the server's immutable startup parameters. It is
// built once and never mutated afterward.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Workers            int           `mapstructure:"workers"`
	DocumentRoot       string        `mapstructure:"document_root"`
	UploadSubdir       string        `mapstructure:"upload_subdir"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	MaxRequestsPerConn int           `mapstructure:"max_requests_per_connection"`
	MaxRequestBytes    int           `mapstructure:"max_request_bytes"`
	Backlog            int           `mapstructure:"backlog"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Defaults returns the server's baseline ServerConfig before any config
// file, environment variable, or CLI override is applied.
func Defaults() ServerConfig {
	return ServerConfig{
		Host:               "127.0.0.1",
		Port:               8080,
		Workers:            10,
		DocumentRoot:       "resources",
		UploadSubdir:       "uploads",
		IdleTimeout:        30 * time.Second,
		MaxRequestsPerConn: 100,
		MaxRequestBytes:    8192,
		Backlog:            50,
		LogLevel:           "info",
		LogFormat:          "json",
	}
}
