package metrics

import (
	"strings"

	"codeberg.org/virens/fangovd/internal/errors"
)

const defaultListenAddress = "127.0.0.1:9772"

type Config struct {
	Enabled bool
	// ListenAddress is where /metrics is served. Empty means collect
	// without serving (useful in tests).
	ListenAddress string
}

func DefaultConfig() Config {
	return Config{
		Enabled:       false, // Disabled by default
		ListenAddress: defaultListenAddress,
	}
}

func (c Config) Validate() error {
	if c.Enabled && c.ListenAddress != "" && !strings.Contains(c.ListenAddress, ":") {
		return errors.WithData(ErrInvalidListen, c.ListenAddress)
	}

	return nil
}
