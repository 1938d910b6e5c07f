package sensor

import (
	"context"
	"os/exec"
	"time"
)

// runner abstracts external command execution for testing. Every call is
// bounded by the configured timeout so a wedged tool cannot stall the
// control loop indefinitely.
type runner interface {
	Output(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return exec.CommandContext(ctx, name, args...).Output()
}
