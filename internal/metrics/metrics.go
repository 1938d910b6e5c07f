package metrics

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/virens/fangovd/internal/errors"
	"codeberg.org/virens/fangovd/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// service exposes governor state as Prometheus gauges and counters on an
// optional local HTTP listener. Nothing is persisted; scraping is the
// only way to get history out.
type service struct {
	registry *prometheus.Registry
	server   *http.Server

	cpuTemp        prometheus.Gauge
	gpuTemp        prometheus.Gauge
	gpuUtil        prometheus.Gauge
	fanLevel       prometheus.Gauge
	fanDuty        prometheus.Gauge
	cycles         prometheus.Counter
	levelChanges   prometheus.Counter
	commitFailures prometheus.Counter
}

// No-op implementation
type noopCollector struct{}

func NewService(cfg Config) (Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err)
	}

	// If metrics is disabled, return a no-op collector
	if !cfg.Enabled {
		logger.Debug().Msg("Metrics collection disabled, using no-op collector")
		return &noopCollector{}, nil
	}

	s := &service{registry: prometheus.NewRegistry()}
	s.cpuTemp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fangovd_cpu_temperature_celsius",
		Help: "Hottest CPU temperature observed in the last cycle.",
	})
	s.gpuTemp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fangovd_gpu_temperature_celsius",
		Help: "Hottest GPU temperature observed in the last cycle.",
	})
	s.gpuUtil = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fangovd_gpu_utilization_percent",
		Help: "Busiest GPU utilization observed in the last cycle.",
	})
	s.fanLevel = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fangovd_fan_level",
		Help: "Committed fan level (0=default, 1=medium, 2=high, 3=max).",
	})
	s.fanDuty = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fangovd_fan_duty_percent",
		Help: "Duty cycle mapped from the committed fan level.",
	})
	s.cycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fangovd_cycles_total",
		Help: "Total control cycles completed.",
	})
	s.levelChanges = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fangovd_fan_level_changes_total",
		Help: "Total committed fan level changes.",
	})
	s.commitFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fangovd_commit_failures_total",
		Help: "Total failed duty cycle commits.",
	})

	s.registry.MustRegister(
		s.cpuTemp, s.gpuTemp, s.gpuUtil,
		s.fanLevel, s.fanDuty,
		s.cycles, s.levelChanges, s.commitFailures,
	)

	if cfg.ListenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
		s.server = &http.Server{
			Addr:              cfg.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		}

		go func() {
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Str("listen", cfg.ListenAddress).Msg("Metrics listener failed")
			}
		}()

		logger.Info().Str("listen", cfg.ListenAddress).Msg("Metrics listener started")
	}

	return s, nil
}

func (s *service) Record(ctx context.Context, sample *Sample) error {
	if sample == nil {
		return errors.New(ErrInvalidSample)
	}

	select {
	case <-ctx.Done():
		return errors.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	s.cpuTemp.Set(float64(sample.CPUTemp))
	s.gpuTemp.Set(float64(sample.GPUTemp))
	s.gpuUtil.Set(float64(sample.GPUUtil))
	s.fanLevel.Set(float64(sample.Level))
	s.fanDuty.Set(float64(sample.Duty))
	s.cycles.Inc()

	if sample.LevelChanged {
		s.levelChanges.Inc()
	}
	if sample.CommitFailed {
		s.commitFailures.Inc()
	}

	return nil
}

func (s *service) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(ErrServiceShutdown, err)
	}

	return nil
}

// No-op implementation
func (*noopCollector) Record(_ context.Context, _ *Sample) error {
	return nil
}

func (*noopCollector) Close() error {
	return nil
}
