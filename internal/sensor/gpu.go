package sensor

import (
	"context"
	"strconv"
	"strings"
	"time"

	"codeberg.org/virens/fangovd/internal/errors"
)

// GPU backend names accepted in the configuration.
const (
	BackendSMI  = "smi"
	BackendNVML = "nvml"
)

// smiSource reads GPU telemetry by shelling out to nvidia-smi. One CSV
// row per device; both columns are aggregated by maximum so cooling
// follows the hottest and busiest device.
type smiSource struct {
	run     runner
	timeout time.Duration
}

func newSMISource(run runner, timeout time.Duration) *smiSource {
	return &smiSource{run: run, timeout: timeout}
}

func (s *smiSource) Read(ctx context.Context) (int, int, error) {
	out, err := s.run.Output(ctx, s.timeout, "nvidia-smi",
		"--query-gpu=temperature.gpu,utilization.gpu",
		"--format=csv,noheader,nounits")
	if err != nil {
		return 0, 0, errors.Wrap(ErrQueryFailed, err)
	}

	return parseSMIRows(string(out))
}

func (*smiSource) Close() error {
	return nil
}

func parseSMIRows(out string) (int, int, error) {
	maxTemp, maxUtil, rows := 0, 0, 0

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}

		temp, tempErr := strconv.Atoi(strings.TrimSpace(parts[0]))
		util, utilErr := strconv.Atoi(strings.TrimSpace(parts[1]))
		if tempErr != nil || utilErr != nil {
			continue
		}

		rows++
		if temp > maxTemp {
			maxTemp = temp
		}
		if util > maxUtil {
			maxUtil = util
		}
	}

	if rows == 0 {
		return 0, 0, errors.WithData(ErrMalformedOutput, out)
	}

	return maxTemp, maxUtil, nil
}
