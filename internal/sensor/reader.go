package sensor

import (
	"context"
	"time"

	"codeberg.org/virens/fangovd/internal/errors"
	"codeberg.org/virens/fangovd/internal/logger"
)

// Config selects the GPU backend and bounds external calls.
type Config struct {
	Backend        string
	CommandTimeout time.Duration
}

type reader struct {
	gpu     Source
	run     runner
	sysRoot string
	timeout time.Duration
}

// New builds a Reader for the configured GPU backend.
func New(cfg Config) (Reader, error) {
	r := &reader{
		run:     execRunner{},
		sysRoot: "/sys",
		timeout: cfg.CommandTimeout,
	}

	switch cfg.Backend {
	case "", BackendSMI:
		r.gpu = newSMISource(r.run, r.timeout)
	case BackendNVML:
		src, err := newNVMLSource()
		if err != nil {
			return nil, err
		}
		r.gpu = src
	default:
		return nil, errors.WithData(errors.ErrInvalidBackend, cfg.Backend)
	}

	return r, nil
}

// Read collects one snapshot. It never fails: a source that errors out
// contributes a zero reading and the cycle goes on.
func (r *reader) Read(ctx context.Context) Snapshot {
	snap := Snapshot{CPUTemp: r.cpuTemperature(ctx)}

	temp, util, err := r.gpu.Read(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("GPU telemetry unavailable")
		return snap
	}

	snap.GPUTemp = temp
	snap.GPUUtil = util

	return snap
}

func (r *reader) Close() error {
	return r.gpu.Close()
}
