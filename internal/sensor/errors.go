package sensor

import (
	"codeberg.org/virens/fangovd/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	ErrQueryFailed     = errors.ErrorCode("sensor_gpu_query_failed")
	ErrMalformedOutput = errors.ErrorCode("sensor_malformed_output")
	ErrNVMLInit        = errors.ErrorCode("sensor_nvml_init_failed")
	ErrNVMLRead        = errors.ErrorCode("sensor_nvml_read_failed")
	ErrNVMLShutdown    = errors.ErrorCode("sensor_nvml_shutdown_failed")
)

// nvmlError adapts an NVML return code into an error
type nvmlError struct {
	ret nvml.Return
}

func (e *nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

func newNVMLError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}

	return &nvmlError{ret: ret}
}

func isNVMLSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}
