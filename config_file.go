package vfx

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EmitterPreset bundles everything needed to reproduce an effect: the
// simulation config, the spawn ranges and the schedule parameters.
type EmitterPreset struct {
	Name       string           `yaml:"name"`
	Simulation SimulationConfig `yaml:"simulation"`
	Spawn      SpawnSettings    `yaml:"spawn"`
	Delay      float32          `yaml:"delay"`
	EmitCount  int              `yaml:"emit_count"`
	Loop       bool             `yaml:"loop"`
}

// DefaultEmitterPreset mirrors the defaults the engine starts with.
func DefaultEmitterPreset() EmitterPreset {
	return EmitterPreset{
		Name:       "default",
		Simulation: DefaultSimulationConfig(),
		Spawn:      DefaultSpawnSettings(),
		Delay:      0.1,
		EmitCount:  10,
		Loop:       true,
	}
}

// LoadEmitterPreset reads a preset from a YAML file. Missing fields keep
// their defaults.
func LoadEmitterPreset(path string) (EmitterPreset, error) {
	preset := DefaultEmitterPreset()

	data, err := os.ReadFile(path)
	if err != nil {
		return preset, fmt.Errorf("read preset: %w", err)
	}
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return preset, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if preset.Simulation.Capacity <= 0 {
		preset.Simulation.Capacity = DefaultSimulationConfig().Capacity
	}
	return preset, nil
}

// SaveEmitterPreset writes the preset as YAML.
func SaveEmitterPreset(path string, preset EmitterPreset) error {
	data, err := yaml.Marshal(&preset)
	if err != nil {
		return fmt.Errorf("marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

// NewEngineFromPreset builds an engine wired with the preset's spawn ranges
// and schedule.
func NewEngineFromPreset(preset EmitterPreset, opts ...Option) *Engine {
	opts = append(opts, WithSpawnSettings(preset.Spawn))
	e := NewEngine(preset.Simulation, opts...)
	e.emitter.Delay = preset.Delay
	e.emitter.EmitCount = preset.EmitCount
	e.emitter.Loop = preset.Loop
	return e
}
