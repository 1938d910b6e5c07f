package metrics

import (
	"context"

	"codeberg.org/virens/fangovd/internal/policy"
)

// Collector records one sample per control cycle.
type Collector interface {
	Record(ctx context.Context, sample *Sample) error
	Close() error
}

// Sample is the observable state of one governor cycle.
type Sample struct {
	CPUTemp      int
	GPUTemp      int
	GPUUtil      int
	Level        policy.FanLevel
	Duty         int
	LevelChanged bool
	CommitFailed bool
}
