package actuator

import (
	"context"

	"codeberg.org/virens/fangovd/internal/policy"
)

// Actuator commits fan levels to the cooling hardware.
type Actuator interface {
	// Apply switches the hardware to manual fan control if needed and
	// sets the duty cycle mapped from level. Safe to call repeatedly
	// with the same level.
	Apply(ctx context.Context, level policy.FanLevel) error

	// RestoreAuto returns fan control to the firmware. Must be called
	// before the process exits whenever Apply has been called.
	RestoreAuto(ctx context.Context) error
}
