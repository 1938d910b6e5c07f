package metrics

import (
	"context"
	"testing"

	"codeberg.org/virens/fangovd/internal/policy"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceDisabledIsNoop(t *testing.T) {
	c, err := NewService(DefaultConfig())
	require.NoError(t, err)

	_, ok := c.(*noopCollector)
	assert.True(t, ok)

	require.NoError(t, c.Record(context.Background(), nil))
	require.NoError(t, c.Close())
}

func TestRecordUpdatesMetrics(t *testing.T) {
	c, err := NewService(Config{Enabled: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	s, ok := c.(*service)
	require.True(t, ok)

	sample := &Sample{
		CPUTemp:      48,
		GPUTemp:      66,
		GPUUtil:      31,
		Level:        policy.LevelHigh,
		Duty:         72,
		LevelChanged: true,
	}
	require.NoError(t, s.Record(context.Background(), sample))

	assert.Equal(t, 48.0, testutil.ToFloat64(s.cpuTemp))
	assert.Equal(t, 66.0, testutil.ToFloat64(s.gpuTemp))
	assert.Equal(t, 31.0, testutil.ToFloat64(s.gpuUtil))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.fanLevel))
	assert.Equal(t, 72.0, testutil.ToFloat64(s.fanDuty))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.cycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.levelChanges))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.commitFailures))

	// A steady cycle bumps only the cycle counter
	sample.LevelChanged = false
	require.NoError(t, s.Record(context.Background(), sample))

	assert.Equal(t, 2.0, testutil.ToFloat64(s.cycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.levelChanges))
}

func TestRecordCountsCommitFailures(t *testing.T) {
	c, err := NewService(Config{Enabled: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	s := c.(*service)
	require.NoError(t, s.Record(context.Background(), &Sample{CommitFailed: true}))
	require.NoError(t, s.Record(context.Background(), &Sample{CommitFailed: true}))

	assert.Equal(t, 2.0, testutil.ToFloat64(s.commitFailures))
}

func TestRecordNilSample(t *testing.T) {
	c, err := NewService(Config{Enabled: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	err = c.Record(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(ErrInvalidSample))
}

func TestRecordCanceledContext(t *testing.T) {
	c, err := NewService(Config{Enabled: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.Record(ctx, &Sample{})
	require.Error(t, err)
}

func TestNewServiceRejectsBadListenAddress(t *testing.T) {
	_, err := NewService(Config{Enabled: true, ListenAddress: "no-port-here"})
	require.Error(t, err)
}

func TestCloseWithoutListener(t *testing.T) {
	c, err := NewService(Config{Enabled: true})
	require.NoError(t, err)

	require.NoError(t, c.Close())
}
