package metrics

import "codeberg.org/virens/fangovd/internal/errors"

const (
	ErrInvalidConfig    = errors.ErrInvalidConfig
	ErrInvalidListen    = errors.ErrorCode("metrics_invalid_listen_address")
	ErrInvalidSample    = errors.ErrorCode("metrics_invalid_sample")
	ErrServiceShutdown  = errors.ErrShutdownFailed
	ErrOperationTimeout = errors.ErrTimeout
)
