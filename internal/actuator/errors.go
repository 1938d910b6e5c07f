package actuator

import "codeberg.org/virens/fangovd/internal/errors"

const (
	ErrManualModeFailed  = errors.ErrorCode("actuator_manual_mode_failed")
	ErrDutyCommandFailed = errors.ErrorCode("actuator_duty_command_failed")
	ErrRestoreAutoFailed = errors.ErrorCode("actuator_restore_auto_failed")
)
