package sensor

import "context"

// Snapshot holds one cycle's worth of telemetry. Values are best-effort
// maxima across all available sources; 0 means "unavailable", not "cold".
type Snapshot struct {
	CPUTemp int // °C, max across thermal zones or sensors packages
	GPUTemp int // °C, max across GPU devices
	GPUUtil int // percent, max across GPU devices
}

// Reader produces telemetry snapshots. Read never fails outwardly:
// individual source errors are logged and contribute a zero reading.
type Reader interface {
	Read(ctx context.Context) Snapshot
	Close() error
}

// Source reads temperature and utilization from one GPU backend.
type Source interface {
	Read(ctx context.Context) (temperature, utilization int, err error)
	Close() error
}
