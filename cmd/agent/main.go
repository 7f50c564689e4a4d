package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetdesk/cmd/agent/agentd"

	"github.com/rs/zerolog"
)

func main() {
	var (
		server    = flag.String("server", "http://127.0.0.1:8080", "base URL of the fleet backend")
		metricsIv = flag.Duration("metrics-interval", 30*time.Second, "how often to report system metrics")
		portsIv   = flag.Duration("ports-interval", time.Minute, "how often to report port snapshots")
		pollIv    = flag.Duration("poll-interval", 5*time.Second, "how often to poll for commands")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := agentd.NewRunner(agentd.NewClient(*server), log, agentd.Options{
		MetricsInterval: *metricsIv,
		PortsInterval:   *portsIv,
		PollInterval:    *pollIv,
	})
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("agent stopped")
	}
}
