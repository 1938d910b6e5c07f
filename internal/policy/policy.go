package policy

import (
	"fmt"

	"codeberg.org/virens/fangovd/internal/sensor"
)

// FanLevel is one of the four cooling levels the governor commits to
// hardware. It is never an arbitrary duty cycle.
type FanLevel int

const (
	LevelDefault FanLevel = iota
	LevelMedium
	LevelHigh
	LevelMax
)

func (l FanLevel) String() string {
	switch l {
	case LevelDefault:
		return "default"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelMax:
		return "max"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// TempSteps holds the four temperature breakpoints for one component.
type TempSteps struct {
	Low      int `mapstructure:"low"`
	Medium   int `mapstructure:"medium"`
	High     int `mapstructure:"high"`
	Critical int `mapstructure:"critical"`
}

// UtilBand holds the two GPU utilization breakpoints.
type UtilBand struct {
	Low  int `mapstructure:"low"`
	High int `mapstructure:"high"`
}

// Thresholds is the full breakpoint set consumed by Decide. Immutable
// after configuration load.
type Thresholds struct {
	GPU  TempSteps
	CPU  TempSteps
	Util UtilBand
}

// DutyTable maps each fan level to a duty cycle in percent of maximum.
type DutyTable struct {
	Default int `mapstructure:"default"`
	Medium  int `mapstructure:"medium"`
	High    int `mapstructure:"high"`
	Max     int `mapstructure:"max"`
}

// Duty returns the duty cycle for a level.
func (t DutyTable) Duty(l FanLevel) int {
	switch l {
	case LevelMedium:
		return t.Medium
	case LevelHigh:
		return t.High
	case LevelMax:
		return t.Max
	default:
		return t.Default
	}
}

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Level  FanLevel
	Reason string
}

// Decide maps a telemetry snapshot and the currently committed level to a
// new fan level. Rules are evaluated in strict descending severity; the
// first match wins. Snapshots that match no rule fall into the hysteresis
// band between the low and medium breakpoints and keep the current level,
// which is what prevents the fans from hunting across a single boundary.
func Decide(snap sensor.Snapshot, current FanLevel, th Thresholds) Decision {
	switch {
	case snap.GPUTemp >= th.GPU.Critical || snap.CPUTemp >= th.CPU.Critical:
		return Decision{
			Level:  LevelMax,
			Reason: fmt.Sprintf("CRITICAL temperature (GPU: %d°C, CPU: %d°C)", snap.GPUTemp, snap.CPUTemp),
		}
	case snap.GPUTemp >= th.GPU.High || snap.CPUTemp >= th.CPU.High:
		return Decision{
			Level:  LevelHigh,
			Reason: fmt.Sprintf("HIGH temperature (GPU: %d°C, CPU: %d°C)", snap.GPUTemp, snap.CPUTemp),
		}
	case snap.GPUTemp >= th.GPU.Medium || snap.CPUTemp >= th.CPU.Medium || snap.GPUUtil >= th.Util.High:
		return Decision{
			Level:  LevelMedium,
			Reason: "MEDIUM temperature or HIGH utilization",
		}
	case snap.GPUTemp < th.GPU.Low && snap.CPUTemp < th.CPU.Low && snap.GPUUtil < th.Util.Low:
		return Decision{
			Level:  LevelDefault,
			Reason: "LOW temperatures and utilization",
		}
	default:
		return Decision{
			Level:  current,
			Reason: "maintaining current level",
		}
	}
}

// DefaultThresholds are the breakpoints the daemon ships with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GPU:  TempSteps{Low: 50, Medium: 60, High: 70, Critical: 80},
		CPU:  TempSteps{Low: 35, Medium: 45, High: 60, Critical: 75},
		Util: UtilBand{Low: 30, High: 70},
	}
}

// DefaultDutyTable is the stock level-to-duty mapping.
func DefaultDutyTable() DutyTable {
	return DutyTable{Default: 32, Medium: 50, High: 72, Max: 100}
}
