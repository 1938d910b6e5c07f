package governor

import (
	"context"
	"time"

	"codeberg.org/virens/fangovd/internal/actuator"
	"codeberg.org/virens/fangovd/internal/config"
	"codeberg.org/virens/fangovd/internal/errors"
	"codeberg.org/virens/fangovd/internal/logger"
	"codeberg.org/virens/fangovd/internal/metrics"
	"codeberg.org/virens/fangovd/internal/policy"
	"codeberg.org/virens/fangovd/internal/sensor"
)

// State is the governor lifecycle phase.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Governor owns the control cycle: read telemetry, decide, commit on
// change. current is the last level successfully committed to hardware
// and is touched only by the single loop goroutine.
type Governor struct {
	reader     sensor.Reader
	actuator   actuator.Actuator
	collector  metrics.Collector
	thresholds policy.Thresholds
	duty       policy.DutyTable

	interval        time.Duration
	shutdownTimeout time.Duration

	state    State
	current  policy.FanLevel
	restored bool
}

func New(cfg *config.Config, reader sensor.Reader, act actuator.Actuator, collector metrics.Collector) *Governor {
	return &Governor{
		reader:          reader,
		actuator:        act,
		collector:       collector,
		thresholds:      cfg.Thresholds(),
		duty:            cfg.Duty,
		interval:        cfg.IntervalDuration(),
		shutdownTimeout: cfg.CommandTimeoutDuration(),
		state:           StateStarting,
	}
}

// Run drives the control cycle until ctx is canceled or startup fails.
// Automatic fan control is restored exactly once on the way out, on
// every exit path, from this goroutine rather than a signal handler.
func (g *Governor) Run(ctx context.Context) error {
	defer g.shutdown()

	if g.interval <= 0 {
		return errors.WithData(errors.ErrInvalidInterval, g.interval)
	}

	initial := policy.Decision{Level: policy.LevelDefault, Reason: "initial setting"}
	if err := g.commit(ctx, initial); err != nil {
		// An actuator that fails the very first command is unusable;
		// bail out instead of looping against dead hardware.
		return errors.Wrap(errors.ErrInitFailed, err)
	}

	g.state = StateRunning
	logger.Debug().Str("state", g.state.String()).Msg("Governor state change")

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.cycle(ctx)
		}
	}
}

// State returns the current lifecycle phase.
func (g *Governor) State() State {
	return g.state
}

// CurrentLevel returns the last fan level committed to hardware.
func (g *Governor) CurrentLevel() policy.FanLevel {
	return g.current
}

func (g *Governor) cycle(ctx context.Context) {
	snap := g.reader.Read(ctx)

	logger.Info().
		Int("gpu_temp", snap.GPUTemp).
		Int("cpu_temp", snap.CPUTemp).
		Int("gpu_util", snap.GPUUtil).
		Str("fan_level", g.current.String()).
		Msg("System temperatures")

	decision := policy.Decide(snap, g.current, g.thresholds)

	sample := &metrics.Sample{
		CPUTemp: snap.CPUTemp,
		GPUTemp: snap.GPUTemp,
		GPUUtil: snap.GPUUtil,
	}

	if decision.Level != g.current {
		if err := g.commit(ctx, decision); err != nil {
			// Hardware keeps its previous duty and current is not
			// advanced, so the next cycle retries the change.
			logger.Error().Err(err).Str("level", decision.Level.String()).Msg("Failed to set fan speed")
			sample.CommitFailed = true
		} else {
			sample.LevelChanged = true
		}
	}

	sample.Level = g.current
	sample.Duty = g.duty.Duty(g.current)

	if err := g.collector.Record(ctx, sample); err != nil {
		logger.Warn().Err(err).Msg("Failed to record metrics sample")
	}
}

func (g *Governor) commit(ctx context.Context, decision policy.Decision) error {
	if err := g.actuator.Apply(ctx, decision.Level); err != nil {
		return err
	}

	g.current = decision.Level
	logger.Info().Msgf("Fan speed set to %d%% (%s)", g.duty.Duty(decision.Level), decision.Reason)

	return nil
}

// shutdown restores automatic fan control exactly once. It runs on a
// fresh context: the loop context is usually already canceled by the
// time we get here.
func (g *Governor) shutdown() {
	g.state = StateStopping

	if !g.restored {
		g.restored = true

		ctx, cancel := context.WithTimeout(context.Background(), g.shutdownTimeout)
		defer cancel()

		if err := g.actuator.RestoreAuto(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to restore automatic fan control")
		} else {
			logger.Info().Msg("Restored automatic fan control")
		}
	}

	g.state = StateStopped
}
