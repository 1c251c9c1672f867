package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/delaysim/internal/delay"
	"github.com/san-kum/delaysim/internal/dynamo"
)

const (
	DefaultModel      = "thyroid"
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.01
	DefaultDuration   = 86400.0
	DefaultWorkers    = 8
)

type Config struct {
	Model       string             `yaml:"model"`
	Integrator  string             `yaml:"integrator"`
	DelayMode   string             `yaml:"delay_mode"`
	Dt          float64            `yaml:"dt"`
	Duration    float64            `yaml:"duration"`
	SampleEvery int                `yaml:"sample_every"`
	Seed        int64              `yaml:"seed"`
	Params      map[string]float64 `yaml:"params,omitempty"`
	InitState   map[string]float64 `yaml:"init_state,omitempty"`
	Delays      map[string]float64 `yaml:"delays,omitempty"`
	Metrics     []string           `yaml:"metrics,omitempty"`
	Noise       NoiseConfig        `yaml:"noise"`
	Sweep       SweepConfig        `yaml:"sweep"`
}

// NoiseConfig describes the external input. It is off while both Mean and
// Sigma are zero; otherwise it replaces the model's constant input.
type NoiseConfig struct {
	Mean     float64 `yaml:"mean"`
	Sigma    float64 `yaml:"sigma"`
	Interval float64 `yaml:"interval"`
}

func (n NoiseConfig) Enabled() bool { return n.Mean != 0 || n.Sigma != 0 }

type SweepConfig struct {
	Param   string  `yaml:"param"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Stride  float64 `yaml:"stride"`
	Workers int     `yaml:"workers"`
	// Observe is a signal name or a metric spec such as "mean:TSH@43200".
	Observe string `yaml:"observe"`
	// Duration overrides the run duration for each sweep point when set.
	Duration float64 `yaml:"duration,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		DelayMode:  delay.AdvanceOnCommit.String(),
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Seed:       1,
		Sweep: SweepConfig{
			Workers: DefaultWorkers,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", dynamo.ErrConfig)
	}
	if c.Integrator == "" {
		return fmt.Errorf("%w: integrator is required", dynamo.ErrConfig)
	}
	if _, err := delay.ParseMode(c.DelayMode); err != nil {
		return fmt.Errorf("%w: delay_mode: %v", dynamo.ErrConfig, err)
	}
	if _, err := c.Dynamo(); err != nil {
		return err
	}
	if c.Noise.Sigma < 0 || math.IsNaN(c.Noise.Sigma) {
		return fmt.Errorf("%w: noise.sigma must not be negative, got %g", dynamo.ErrConfig, c.Noise.Sigma)
	}
	if c.Noise.Sigma > 0 && !(c.Noise.Interval > 0) {
		return fmt.Errorf("%w: noise.interval must be positive when sigma is set, got %g", dynamo.ErrConfig, c.Noise.Interval)
	}
	return nil
}

// ValidateSweep checks the sweep section on top of Validate.
func (c *Config) ValidateSweep() error {
	if err := c.Validate(); err != nil {
		return err
	}
	s := c.Sweep
	switch {
	case s.Param == "":
		return fmt.Errorf("%w: sweep.param is required", dynamo.ErrConfig)
	case s.Observe == "":
		return fmt.Errorf("%w: sweep.observe is required", dynamo.ErrConfig)
	case !(s.Stride > 0):
		return fmt.Errorf("%w: sweep.stride must be positive, got %g", dynamo.ErrConfig, s.Stride)
	case !(s.Max > s.Min):
		return fmt.Errorf("%w: sweep range [%g, %g) is empty", dynamo.ErrConfig, s.Min, s.Max)
	case s.Workers < 1:
		return fmt.Errorf("%w: sweep.workers must be at least 1, got %d", dynamo.ErrConfig, s.Workers)
	case s.Duration < 0:
		return fmt.Errorf("%w: sweep.duration must not be negative, got %g", dynamo.ErrConfig, s.Duration)
	}
	return nil
}

// Dynamo converts the run settings to the simulator's configuration.
func (c *Config) Dynamo() (dynamo.Config, error) {
	mode, err := delay.ParseMode(c.DelayMode)
	if err != nil {
		return dynamo.Config{}, fmt.Errorf("%w: %v", dynamo.ErrConfig, err)
	}
	out := dynamo.Config{
		Dt:          c.Dt,
		Duration:    c.Duration,
		SampleEvery: c.SampleEvery,
		DelayMode:   mode,
	}
	return out, out.Validate()
}

// Clone returns a deep copy, so presets can be edited by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Params = cloneMap(c.Params)
	out.InitState = cloneMap(c.InitState)
	out.Delays = cloneMap(c.Delays)
	if c.Metrics != nil {
		out.Metrics = append([]string(nil), c.Metrics...)
	}
	return &out
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
