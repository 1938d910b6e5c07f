package governor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"codeberg.org/virens/fangovd/internal/errors"
	"codeberg.org/virens/fangovd/internal/metrics"
	"codeberg.org/virens/fangovd/internal/policy"
	"codeberg.org/virens/fangovd/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	snap sensor.Snapshot
}

func (f *fakeReader) Read(context.Context) sensor.Snapshot { return f.snap }
func (f *fakeReader) Close() error                         { return nil }

type fakeActuator struct {
	mu        sync.Mutex
	applies   []policy.FanLevel
	restores  int
	failLevel policy.FanLevel
	failing   bool
}

func (f *fakeActuator) Apply(_ context.Context, level policy.FanLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.applies = append(f.applies, level)
	if f.failing && level == f.failLevel {
		return fmt.Errorf("apply failed")
	}

	return nil
}

func (f *fakeActuator) RestoreAuto(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.restores++

	return nil
}

func newTestGovernor(reader sensor.Reader, act *fakeActuator) *Governor {
	collector, _ := metrics.NewService(metrics.DefaultConfig())

	return &Governor{
		reader:          reader,
		actuator:        act,
		collector:       collector,
		thresholds:      policy.DefaultThresholds(),
		duty:            policy.DefaultDutyTable(),
		interval:        10 * time.Millisecond,
		shutdownTimeout: time.Second,
		state:           StateStarting,
	}
}

// runFor runs the governor and cancels its context after d.
func runFor(t *testing.T, g *Governor, d time.Duration) error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- g.Run(ctx) }()

	time.Sleep(d)
	cancel()

	select {
	case err := <-errCh:
		return err
	case <-time.After(time.Second):
		t.Fatal("governor did not stop")
		return nil
	}
}

func TestRunCommitsInitialLevelAndRestores(t *testing.T) {
	act := &fakeActuator{}
	g := newTestGovernor(&fakeReader{}, act)

	err := runFor(t, g, 50*time.Millisecond)
	require.NoError(t, err)

	// A zero snapshot is quiet: only the initial commit happens
	assert.Equal(t, []policy.FanLevel{policy.LevelDefault}, act.applies)
	assert.Equal(t, 1, act.restores)
	assert.Equal(t, StateStopped, g.State())
	assert.Equal(t, policy.LevelDefault, g.CurrentLevel())
}

func TestRunEscalatesOnceOnHotGPU(t *testing.T) {
	act := &fakeActuator{}
	reader := &fakeReader{snap: sensor.Snapshot{GPUTemp: 85, CPUTemp: 40, GPUUtil: 10}}
	g := newTestGovernor(reader, act)

	err := runFor(t, g, 60*time.Millisecond)
	require.NoError(t, err)

	// Escalation is committed exactly once, not re-sent every cycle
	assert.Equal(t, []policy.FanLevel{policy.LevelDefault, policy.LevelMax}, act.applies)
	assert.Equal(t, policy.LevelMax, g.CurrentLevel())
	assert.Equal(t, 1, act.restores)
}

func TestFailedCommitDoesNotAdvanceLevel(t *testing.T) {
	act := &fakeActuator{failing: true, failLevel: policy.LevelMax}
	reader := &fakeReader{snap: sensor.Snapshot{GPUTemp: 85, CPUTemp: 40, GPUUtil: 10}}
	g := newTestGovernor(reader, act)

	err := runFor(t, g, 60*time.Millisecond)
	require.NoError(t, err)

	// The tracked level stays put and every cycle retries the commit
	assert.Equal(t, policy.LevelDefault, g.CurrentLevel())
	require.GreaterOrEqual(t, len(act.applies), 3)
	for _, level := range act.applies[1:] {
		assert.Equal(t, policy.LevelMax, level)
	}
	assert.Equal(t, 1, act.restores)
}

func TestRestoreRunsOnceWhenStartupFails(t *testing.T) {
	act := &fakeActuator{failing: true, failLevel: policy.LevelDefault}
	g := newTestGovernor(&fakeReader{}, act)

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInitFailed))
	assert.Equal(t, 1, act.restores)
	assert.Equal(t, StateStopped, g.State())
}

func TestRunRejectsNonPositiveInterval(t *testing.T) {
	act := &fakeActuator{}
	g := newTestGovernor(&fakeReader{}, act)
	g.interval = 0

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidInterval))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "stopped", StateStopped.String())
}
