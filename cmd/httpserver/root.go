package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/disiqueira/httpserver/internal/config"
	"github.com/disiqueira/httpserver/internal/httpserver"
	"github.com/disiqueira/httpserver/internal/logging"
	"github.com/disiqueira/httpserver/internal/metrics"
)

// newRootCmd builds the cobra command tree. The three positional arguments
// (`<port> [<host> [<workers>]]`) take priority over the equivalent flags,
// which exist so operators can reach for the rest of ServerConfig without
// editing a config file.
func newRootCmd() *cobra.Command {
	var o config.Overrides
	var flagHost string
	var flagPort int
	var flagWorkers int

	cmd := &cobra.Command{
		Use:   "httpserver [port] [host] [workers]",
		Short: "Multi-threaded HTTP origin server",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagHost != "" {
				o.Host = flagHost
			}
			if flagPort != 0 {
				o.Port = flagPort
			}
			if flagWorkers != 0 {
				o.Workers = flagWorkers
			}

			if len(args) > 0 {
				port, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid port: %s", args[0])
				}
				o.Port = port
			}
			if len(args) > 1 {
				o.Host = args[1]
			}
			if len(args) > 2 {
				workers, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("invalid worker count: %s", args[2])
				}
				o.Workers = workers
			}

			return run(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVar(&flagHost, "host", "", "bind host (default 127.0.0.1)")
	cmd.Flags().IntVar(&flagPort, "port", 0, "bind port (default 8080)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "worker pool size (default 10)")
	cmd.Flags().StringVar(&o.DocumentRoot, "document-root", "", "document root directory")
	cmd.Flags().StringVar(&o.UploadSubdir, "upload-dir", "", "upload subdirectory under the document root")
	cmd.Flags().StringVar(&o.IdleTimeout, "idle-timeout", "", "keep-alive idle timeout (e.g. 30s)")
	cmd.Flags().IntVar(&o.MaxRequestsPerConn, "max-requests", 0, "max requests served per connection")
	cmd.Flags().IntVar(&o.MaxRequestBytes, "max-request-bytes", 0, "hard cap on head+body bytes")
	cmd.Flags().IntVar(&o.Backlog, "backlog", 0, "listen backlog / hand-off queue capacity")
	cmd.Flags().StringVar(&o.MetricsAddr, "metrics-addr", "", "address for the optional Prometheus exporter (disabled if empty)")

	return cmd
}

func run(ctx context.Context, o config.Overrides) error {
	cfg, err := config.Load(o)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(logging.Options{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var collectors *metrics.Collectors
	if cfg.MetricsAddr != "" {
		collectors = metrics.New()
		go func() {
			if err := collectors.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error("metrics listener stopped", "error", err)
			}
		}()
	}

	srv := httpserver.New(cfg, log, collectors)
	return srv.Run(ctx)
}
