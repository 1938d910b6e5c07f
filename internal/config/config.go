package config

import (
	"os"
	"time"

	"codeberg.org/virens/fangovd/internal/errors"
	"codeberg.org/virens/fangovd/internal/policy"
	"codeberg.org/virens/fangovd/internal/sensor"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval       = 5
	defaultCommandTimeout = 5
	defaultLogFile        = "/var/log/fangovd.log"
	defaultMetricsListen  = "127.0.0.1:9772"

	configName = "fangovd"
	configType = "toml"
	configPath = "/etc"
	envPrefix  = "FANGOVD"
)

// Config is immutable after Load.
type Config struct {
	Interval       int
	Backend        string
	CommandTimeout int    `mapstructure:"command_timeout"`
	LogLevel       string `mapstructure:"log_level"`
	LogFile        string `mapstructure:"log_file"`
	Metrics        bool
	MetricsListen  string           `mapstructure:"metrics_listen"`
	GPUTemp        policy.TempSteps `mapstructure:"gpu_temp"`
	CPUTemp        policy.TempSteps `mapstructure:"cpu_temp"`
	Util           policy.UtilBand  `mapstructure:"util"`
	Duty           policy.DutyTable `mapstructure:"duty"`
}

// Load reads configuration from /etc/fangovd.toml (or the file named by
// FANGOVD_CONFIG), environment variables and command line flags, in
// ascending priority.
func Load() (*Config, error) {
	fs := pflag.NewFlagSet("fangovd", pflag.ContinueOnError)
	fs.Int("interval", defaultInterval, "Seconds between control cycles")
	fs.String("backend", sensor.BackendSMI, "GPU telemetry backend (smi or nvml)")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("log-file", defaultLogFile, "Log file path (empty disables file logging)")
	fs.Bool("metrics", false, "Enable the Prometheus metrics listener")
	fs.String("metrics-listen", defaultMetricsListen, "Metrics listen address")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err)
	}

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// Flags set on the command line override file and environment values
	if err := bindFlags(v, fs); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrReadConfig, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// bindFlags maps each flag onto its config key. Dashed flag names bind
// to the underscored keys the TOML file and mapstructure tags use.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"interval":       "interval",
		"backend":        "backend",
		"log_level":      "log-level",
		"log_file":       "log-file",
		"metrics":        "metrics",
		"metrics_listen": "metrics-listen",
	}

	for key, name := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return err
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	th := policy.DefaultThresholds()
	duty := policy.DefaultDutyTable()

	v.SetDefault("interval", defaultInterval)
	v.SetDefault("backend", sensor.BackendSMI)
	v.SetDefault("command_timeout", defaultCommandTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", defaultLogFile)
	v.SetDefault("metrics", false)
	v.SetDefault("metrics_listen", defaultMetricsListen)

	v.SetDefault("gpu_temp.low", th.GPU.Low)
	v.SetDefault("gpu_temp.medium", th.GPU.Medium)
	v.SetDefault("gpu_temp.high", th.GPU.High)
	v.SetDefault("gpu_temp.critical", th.GPU.Critical)

	v.SetDefault("cpu_temp.low", th.CPU.Low)
	v.SetDefault("cpu_temp.medium", th.CPU.Medium)
	v.SetDefault("cpu_temp.high", th.CPU.High)
	v.SetDefault("cpu_temp.critical", th.CPU.Critical)

	v.SetDefault("util.low", th.Util.Low)
	v.SetDefault("util.high", th.Util.High)

	v.SetDefault("duty.default", duty.Default)
	v.SetDefault("duty.medium", duty.Medium)
	v.SetDefault("duty.high", duty.High)
	v.SetDefault("duty.max", duty.Max)
}

func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return errors.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.CommandTimeout <= 0 {
		return errors.WithData(errors.ErrInvalidTimeout, c.CommandTimeout)
	}

	if c.Backend != sensor.BackendSMI && c.Backend != sensor.BackendNVML {
		return errors.WithData(errors.ErrInvalidBackend, c.Backend)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errors.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	for _, steps := range []policy.TempSteps{c.GPUTemp, c.CPUTemp} {
		if steps.Low >= steps.Medium || steps.Medium >= steps.High || steps.High >= steps.Critical {
			return errors.WithData(errors.ErrInvalidThresholds, steps)
		}
	}

	if c.Util.Low >= c.Util.High {
		return errors.WithData(errors.ErrInvalidThresholds, c.Util)
	}

	d := c.Duty
	if d.Default < 1 || d.Max > 100 || d.Default >= d.Medium || d.Medium >= d.High || d.High >= d.Max {
		return errors.WithData(errors.ErrInvalidDutyTable, d)
	}

	return nil
}

// Thresholds returns the policy breakpoints in one value.
func (c *Config) Thresholds() policy.Thresholds {
	return policy.Thresholds{GPU: c.GPUTemp, CPU: c.CPUTemp, Util: c.Util}
}

// IntervalDuration returns the cycle interval as a duration.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// CommandTimeoutDuration bounds each external sensor/actuator call.
func (c *Config) CommandTimeoutDuration() time.Duration {
	return time.Duration(c.CommandTimeout) * time.Second
}
