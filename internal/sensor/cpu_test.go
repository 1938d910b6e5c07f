package sensor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	output []byte
	err    error
	calls  [][]string
}

func (f *fakeRunner) Output(_ context.Context, _ time.Duration, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.output, f.err
}

func writeZone(t *testing.T, root, zone, value string) {
	t.Helper()
	dir := filepath.Join(root, "class/thermal", zone)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temp"), []byte(value), 0o644))
}

const sensorsOutput = `coretemp-isa-0000
Adapter: ISA adapter
Package id 0:  +56.0°C  (high = +80.0°C, crit = +100.0°C)
Core 0:        +54.0°C  (high = +80.0°C, crit = +100.0°C)
Core 1:        +51.0°C  (high = +80.0°C, crit = +100.0°C)

coretemp-isa-0001
Adapter: ISA adapter
Package id 1:  +49.0°C  (high = +80.0°C, crit = +100.0°C)
`

func TestThermalZoneMax(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "45000\n")
	writeZone(t, root, "thermal_zone1", "52000\n")
	writeZone(t, root, "thermal_zone2", "garbage\n")

	r := &reader{sysRoot: root}
	assert.Equal(t, 52, r.thermalZoneMax())
}

func TestThermalZoneMaxEmpty(t *testing.T) {
	r := &reader{sysRoot: t.TempDir()}
	assert.Equal(t, 0, r.thermalZoneMax())
}

func TestCPUTemperatureFallsBackToSensors(t *testing.T) {
	run := &fakeRunner{output: []byte(sensorsOutput)}
	r := &reader{run: run, sysRoot: t.TempDir(), timeout: time.Second}

	assert.Equal(t, 56, r.cpuTemperature(context.Background()))
	require.Len(t, run.calls, 1)
	assert.Equal(t, "sensors", run.calls[0][0])
}

func TestCPUTemperaturePrefersThermalZones(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "61000")

	run := &fakeRunner{output: []byte(sensorsOutput)}
	r := &reader{run: run, sysRoot: root, timeout: time.Second}

	assert.Equal(t, 61, r.cpuTemperature(context.Background()))
	assert.Empty(t, run.calls, "sensors must not be consulted when zones answered")
}

func TestParseSensorsPackageMax(t *testing.T) {
	assert.Equal(t, 56, parseSensorsPackageMax(sensorsOutput))
	assert.Equal(t, 0, parseSensorsPackageMax("no temperature lines here"))
	assert.Equal(t, 0, parseSensorsPackageMax("Package id 0: not a number °C"))
}

func TestSensorsCommandFailureYieldsZero(t *testing.T) {
	run := &fakeRunner{err: fmt.Errorf("exec: not found")}
	r := &reader{run: run, sysRoot: t.TempDir(), timeout: time.Second}

	assert.Equal(t, 0, r.cpuTemperature(context.Background()))
}
