package sensor

import (
	"context"

	"codeberg.org/virens/fangovd/internal/errors"
	"codeberg.org/virens/fangovd/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlSource reads GPU telemetry through the NVML driver API instead of
// shelling out. Preferred on hosts where nvidia-smi is slow or absent.
type nvmlSource struct {
	initialized bool
}

func newNVMLSource() (*nvmlSource, error) {
	if ret := nvml.Init(); !isNVMLSuccess(ret) {
		return nil, errors.Wrap(ErrNVMLInit, newNVMLError(ret))
	}

	return &nvmlSource{initialized: true}, nil
}

func (s *nvmlSource) Read(_ context.Context) (int, int, error) {
	count, ret := nvml.DeviceGetCount()
	if !isNVMLSuccess(ret) {
		return 0, 0, errors.Wrap(ErrNVMLRead, newNVMLError(ret))
	}

	maxTemp, maxUtil := 0, 0
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if !isNVMLSuccess(ret) {
			logger.Debug().Int("device", i).Msgf("Failed to get device handle: %v", nvml.ErrorString(ret))
			continue
		}

		if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); isNVMLSuccess(ret) && int(temp) > maxTemp {
			maxTemp = int(temp)
		}

		if util, ret := device.GetUtilizationRates(); isNVMLSuccess(ret) && int(util.Gpu) > maxUtil {
			maxUtil = int(util.Gpu)
		}
	}

	return maxTemp, maxUtil, nil
}

func (s *nvmlSource) Close() error {
	if !s.initialized {
		return nil
	}

	if ret := nvml.Shutdown(); !isNVMLSuccess(ret) {
		return errors.Wrap(ErrNVMLShutdown, newNVMLError(ret))
	}
	s.initialized = false

	return nil
}
