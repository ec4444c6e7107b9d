// Command server runs the batch-job HTTP service: it accepts agent/
// building sets over POST /v1/jobs, maps each job's agents to nearby
// buildings using the kd-tree or quadmap index, and serves job status,
// results, health, stats, and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urbantraffic/agentmap/pkg/api/rest"
	"github.com/urbantraffic/agentmap/pkg/config"
	"github.com/urbantraffic/agentmap/pkg/observability"
)

func main() {
	var (
		host = flag.String("host", "", "server host (overrides config/env)")
		port = flag.Int("port", 0, "server port (overrides config/env)")
	)
	flag.Parse()

	cfg := config.LoadFromEnv()
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewDefaultLogger()
	metrics := observability.NewMetrics()

	store := rest.NewJobStore(&cfg.Index, metrics, logger)
	server := rest.NewServerFromConfig(cfg, store, logger, metrics)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		logger.Error("server error", map[string]interface{}{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error("error during shutdown", map[string]interface{}{"error": err.Error()})
	}
}
