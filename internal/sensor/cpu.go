package sensor

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/virens/fangovd/internal/logger"
)

const milliDegreesPerDegree = 1000

// cpuTemperature returns the hottest CPU reading. Thermal zones are the
// primary source; the lm-sensors CLI is consulted only when the zones
// yield nothing (no hwmon support, restrictive permissions).
func (r *reader) cpuTemperature(ctx context.Context) int {
	if t := r.thermalZoneMax(); t > 0 {
		return t
	}

	return r.sensorsPackageMax(ctx)
}

func (r *reader) thermalZoneMax() int {
	zones, err := filepath.Glob(filepath.Join(r.sysRoot, "class/thermal/thermal_zone*/temp"))
	if err != nil {
		return 0
	}

	maxTemp := 0
	for _, zone := range zones {
		raw, err := os.ReadFile(zone)
		if err != nil {
			continue
		}

		milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			continue
		}

		if c := milli / milliDegreesPerDegree; c > maxTemp {
			maxTemp = c
		}
	}

	return maxTemp
}

func (r *reader) sensorsPackageMax(ctx context.Context) int {
	out, err := r.run.Output(ctx, r.timeout, "sensors")
	if err != nil {
		logger.Warn().Err(err).Str("command", "sensors").Msg("Failed to read CPU temperature")
		return 0
	}

	return parseSensorsPackageMax(string(out))
}

// parseSensorsPackageMax extracts the maximum "Package id N" temperature
// from lm-sensors output, e.g. "Package id 0:  +56.0°C  (high = +80.0°C)".
func parseSensorsPackageMax(out string) int {
	maxTemp := 0
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Package id") || !strings.Contains(line, "°C") {
			continue
		}

		_, rest, ok := strings.Cut(line, "+")
		if !ok {
			continue
		}
		value, _, ok := strings.Cut(rest, "°C")
		if !ok {
			continue
		}

		temp, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			continue
		}

		if t := int(temp); t > maxTemp {
			maxTemp = t
		}
	}

	return maxTemp
}
