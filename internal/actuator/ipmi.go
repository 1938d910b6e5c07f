package actuator

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"codeberg.org/virens/fangovd/internal/errors"
	"codeberg.org/virens/fangovd/internal/logger"
	"codeberg.org/virens/fangovd/internal/policy"
)

// Dell iDRAC raw fan control protocol.
var (
	manualModeArgs  = []string{"raw", "0x30", "0x30", "0x01", "0x00"}
	autoModeArgs    = []string{"raw", "0x30", "0x30", "0x01", "0x01"}
	dutyCommandArgs = []string{"raw", "0x30", "0x30", "0x02", "0xff"}
)

// runner abstracts external command execution for testing.
type runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return exec.CommandContext(ctx, name, args...).Run()
}

// IPMI drives chassis fans through ipmitool. It tracks whether manual
// mode is already enabled so the mode toggle is issued at most once per
// manual session. No retry on failure: the governor does not advance its
// committed level, so the next cycle re-attempts the change.
type IPMI struct {
	run     runner
	duty    policy.DutyTable
	timeout time.Duration
	manual  bool
}

// NewIPMI builds an IPMI actuator using the given duty table.
func NewIPMI(duty policy.DutyTable, timeout time.Duration) *IPMI {
	return &IPMI{
		run:     execRunner{},
		duty:    duty,
		timeout: timeout,
	}
}

func (a *IPMI) Apply(ctx context.Context, level policy.FanLevel) error {
	if !a.manual {
		if err := a.run.Run(ctx, a.timeout, "ipmitool", manualModeArgs...); err != nil {
			return errors.Wrap(ErrManualModeFailed, err)
		}
		a.manual = true
		logger.Debug().Msg("Manual fan control: enabled")
	}

	duty := a.duty.Duty(level)
	args := append(append([]string{}, dutyCommandArgs...), fmt.Sprintf("0x%02x", duty))
	if err := a.run.Run(ctx, a.timeout, "ipmitool", args...); err != nil {
		return errors.WithData(ErrDutyCommandFailed, struct {
			Level string
			Duty  int
			Error string
		}{
			Level: level.String(),
			Duty:  duty,
			Error: err.Error(),
		})
	}

	logger.Debug().Str("level", level.String()).Int("duty", duty).Msg("Duty cycle committed")

	return nil
}

func (a *IPMI) RestoreAuto(ctx context.Context) error {
	if err := a.run.Run(ctx, a.timeout, "ipmitool", autoModeArgs...); err != nil {
		return errors.Wrap(ErrRestoreAutoFailed, err)
	}
	a.manual = false
	logger.Debug().Msg("Automatic fan control: restored")

	return nil
}
