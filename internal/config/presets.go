package config

import "sort"

const day = 86400.0

var Presets = map[string]map[string]*Config{
	"thyroid": {
		"day": {
			Model: "thyroid", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.01, Duration: day, SampleEvery: 6000, Seed: 1,
			Metrics: []string{"mean:TSH@43200", "drift:FT4"},
		},
		"week": {
			Model: "thyroid", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.01, Duration: 7 * day, SampleEvery: 60000, Seed: 1,
			Metrics: []string{"mean:TSH@518400", "amplitude:TSH@518400"},
		},
		"sensitivity": {
			Model: "thyroid", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.01, Duration: day, Seed: 1,
			Sweep: SweepConfig{Param: "GT", Min: 0, Max: 10, Stride: 0.1, Workers: DefaultWorkers, Observe: "TSH"},
		},
		"noisy": {
			Model: "thyroid", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.01, Duration: day, SampleEvery: 6000, Seed: 7,
			Noise: NoiseConfig{Mean: 6.9, Sigma: 1.0, Interval: 600},
		},
	},
	"mackey_glass": {
		"chaotic": {
			Model: "mackey_glass", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.1, Duration: 1000, SampleEvery: 10, Seed: 1,
			Params:  map[string]float64{"tau": 17},
			Metrics: []string{"amplitude:x@500"},
		},
		"periodic": {
			Model: "mackey_glass", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.1, Duration: 1000, SampleEvery: 10, Seed: 1,
			Params:  map[string]float64{"tau": 6},
			Metrics: []string{"amplitude:x@500"},
		},
		"bifurcation": {
			Model: "mackey_glass", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.1, Duration: 1000, Seed: 1,
			Sweep: SweepConfig{Param: "tau", Min: 2, Max: 30, Stride: 0.5, Workers: DefaultWorkers, Observe: "amplitude:x@500"},
		},
	},
	"hutchinson": {
		"stable": {
			Model: "hutchinson", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.01, Duration: 200, SampleEvery: 10, Seed: 1,
			Params:  map[string]float64{"tau": 1},
			Metrics: []string{"amplitude:N@100"},
		},
		"oscillating": {
			Model: "hutchinson", Integrator: "rk4", DelayMode: "commit",
			Dt: 0.01, Duration: 200, SampleEvery: 10, Seed: 1,
			Params:  map[string]float64{"tau": 2},
			Metrics: []string{"amplitude:N@100"},
		},
	},
	"decay": {
		"unit": {
			Model: "decay", Integrator: "euler", DelayMode: "write",
			Dt: 0.01, Duration: 5, SampleEvery: 10, Seed: 1,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	if out.Sweep.Workers == 0 {
		out.Sweep.Workers = DefaultWorkers
	}
	return out
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetModels lists the models that have presets.
func PresetModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
