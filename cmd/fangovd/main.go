package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"codeberg.org/virens/fangovd/internal/actuator"
	"codeberg.org/virens/fangovd/internal/config"
	"codeberg.org/virens/fangovd/internal/errors"
	"codeberg.org/virens/fangovd/internal/governor"
	"codeberg.org/virens/fangovd/internal/logger"
	"codeberg.org/virens/fangovd/internal/metrics"
	"codeberg.org/virens/fangovd/internal/pid"
	"codeberg.org/virens/fangovd/internal/sensor"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFile, logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return err
	}

	if os.Geteuid() != 0 {
		err := errors.New(errors.ErrRootRequired)
		logger.ErrorWithCode(err).Msg("fangovd must be run as root")
		return err
	}

	if err := checkDependencies(cfg); err != nil {
		return err
	}

	if err := pid.Write(); err != nil {
		logger.ErrorWithCode(asCoded(err)).Msg("Failed to write PID file")
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	collector, err := metrics.NewService(metrics.Config{
		Enabled:       cfg.Metrics,
		ListenAddress: cfg.MetricsListen,
	})
	if err != nil {
		logger.ErrorWithCode(asCoded(err)).Msg("Failed to initialize metrics")
		return err
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close metrics collector")
		}
	}()

	reader, err := sensor.New(sensor.Config{
		Backend:        cfg.Backend,
		CommandTimeout: cfg.CommandTimeoutDuration(),
	})
	if err != nil {
		logger.ErrorWithCode(asCoded(err)).Msg("Failed to initialize sensors")
		return err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close sensor reader")
		}
	}()

	act := actuator.NewIPMI(cfg.Duty, cfg.CommandTimeoutDuration())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	logger.Info().
		Int("interval", cfg.Interval).
		Str("backend", cfg.Backend).
		Msg("Starting GPU/CPU fan governor")

	if err := governor.New(cfg, reader, act, collector).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Error in main loop")
		return err
	}

	logger.Info().Msg("Exiting...")

	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

type dependency struct {
	name string
	hint string
}

// checkDependencies verifies the external tools the configured backends
// shell out to. Missing tools are fatal at startup rather than a
// surprise on the first cycle.
func checkDependencies(cfg *config.Config) error {
	deps := []dependency{
		{name: "ipmitool", hint: "Install with: apt-get install ipmitool"},
	}
	if cfg.Backend == sensor.BackendSMI {
		deps = append(deps, dependency{name: "nvidia-smi", hint: "Install NVIDIA drivers"})
	}

	for _, dep := range deps {
		if _, err := exec.LookPath(dep.name); err != nil {
			codedErr := errors.WithData(errors.ErrMissingDependency, dep.name)
			logger.ErrorWithCode(codedErr).Msg(dep.hint)
			return codedErr
		}
	}

	return nil
}

func asCoded(err error) *errors.Error {
	var coded *errors.Error
	if errors.As(err, &coded) {
		return coded
	}

	return errors.Wrap(errors.ErrInternal, err)
}
