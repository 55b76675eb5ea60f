package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ForgeFinx/ForgeFIX/internal/fixlog"
	"github.com/ForgeFinx/ForgeFIX/pkg/fixclient"
	"github.com/ForgeFinx/ForgeFIX/pkg/metrics"
	"github.com/grafana/pyroscope-go"
	"github.com/spf13/cobra"
)

var (
	enableMetrics bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a FIX session and run until logout or interrupt",
	Long: `start loads session settings, dials the counterparty, and runs the
session's event loop in the foreground until the remote party logs out, a
fatal protocol error occurs, or the process receives SIGINT/SIGTERM (which
triggers a graceful logout).

Delivered application messages and lifecycle events are logged but not
otherwise acted on; embedding fixctl's logic into an application means
calling pkg/fixclient directly instead.

Examples:
  fixctl start --config session.yaml
  fixctl start --config session.yaml --metrics`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&enableMetrics, "metrics", false, "enable Prometheus metrics collection")
}

func runStart(cmd *cobra.Command, args []string) error {
	s, err := fixclient.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := fixlog.Init(fixlog.Config{Level: s.LogLevel, Format: s.LogFormat}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if enableMetrics || s.Profile {
		metrics.InitRegistry()
	}

	var profiler *pyroscope.Profiler
	if s.Profile {
		profiler, err = pyroscope.Start(pyroscope.Config{
			ApplicationName: "fixctl." + s.SenderCompID,
			ServerAddress:   s.ProfileEndpoint,
			Tags:            map[string]string{"sender_comp_id": s.SenderCompID, "target_comp_id": s.TargetCompID},
		})
		if err != nil {
			return fmt.Errorf("start profiler: %w", err)
		}
		defer profiler.Stop()
		fixlog.Info("continuous profiling enabled", "endpoint", s.ProfileEndpoint)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := fixlog.L()
	h, err := fixclient.Start(ctx, s, logger)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for {
			ev, err := fixclient.PollEvent(ctx, h)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Info("session ended", "reason", err)
				}
				return
			}
			logger.Info("event delivered", "kind", ev.Kind)
		}
	}()

	select {
	case <-sigCh:
		logger.Info("shutdown signal received, logging out")
	case <-eventsDone:
	}

	endErr := fixclient.End(context.Background(), h)
	<-eventsDone
	return endErr
}
