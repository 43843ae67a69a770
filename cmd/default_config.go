package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/beltsim/sim"
	"github.com/inference-sim/beltsim/sim/workload"
)

// defaultConfigYAML is used when no --config file is given: a five-slot line
// with one worker per slot building A+2+C into P, fed from a noisy alphabet.
const defaultConfigYAML = `seed: 42
recipe:
  product: P
  components: [A, "2", C]
belt:
  length: 5
  tick_period: 1s
workers:
  per_slot: 1
  assembly_duration: 0s
arrivals:
  process: uniform
  min_interval: 500ms
  max_interval: 1500ms
  alphabet: [A, B, C, D, E, F, AC, G, "1", "2", "3", "4", "5"]
run:
  horizon: 1h
  trace_level: none
`

// FileConfig represents the full configuration file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type FileConfig struct {
	Seed     int64                `yaml:"seed"`
	Recipe   RecipeSection        `yaml:"recipe"`
	Belt     BeltSection          `yaml:"belt"`
	Workers  WorkerSection        `yaml:"workers"`
	Arrivals workload.ArrivalSpec `yaml:"arrivals"`
	Run      RunSection           `yaml:"run"`
}

type RecipeSection struct {
	Product    string   `yaml:"product"`
	Components []string `yaml:"components"`
}

type BeltSection struct {
	Length     int           `yaml:"length"`
	TickPeriod time.Duration `yaml:"tick_period"`
	EntryIndex *int          `yaml:"entry_index,omitempty"` // default 0
	ExitIndex  *int          `yaml:"exit_index,omitempty"`  // default: the end opposite the entry
}

type WorkerSection struct {
	PerSlot          int           `yaml:"per_slot"`
	Slots            map[int]int   `yaml:"slots,omitempty"` // slot index -> worker count
	AssemblyDuration time.Duration `yaml:"assembly_duration"`
}

type RunSection struct {
	Horizon    time.Duration `yaml:"horizon"`
	MaxTicks   int64         `yaml:"max_ticks,omitempty"`
	Realtime   bool          `yaml:"realtime,omitempty"`
	Speed      float64       `yaml:"speed,omitempty"`
	TraceLevel string        `yaml:"trace_level,omitempty"`
}

// parseFileConfig decodes YAML with strict field checking: typos must cause errors.
func parseFileConfig(data []byte) (*FileConfig, error) {
	var fc FileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &fc, nil
}

// LoadFileConfig reads the configuration at path, or the built-in default when path is empty.
func LoadFileConfig(path string) (*FileConfig, error) {
	if path == "" {
		return parseFileConfig([]byte(defaultConfigYAML))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseFileConfig(data)
}

// ToSimConfig resolves index defaults and converts durations to simulated µs.
func (fc *FileConfig) ToSimConfig() sim.Config {
	entry := 0
	if fc.Belt.EntryIndex != nil {
		entry = *fc.Belt.EntryIndex
	}
	exit := fc.Belt.Length - 1
	if entry != 0 {
		exit = 0
	}
	if fc.Belt.ExitIndex != nil {
		exit = *fc.Belt.ExitIndex
	}
	return sim.Config{
		Recipe: sim.RecipeConfig{
			Product:    fc.Recipe.Product,
			Components: fc.Recipe.Components,
		},
		Belt: sim.BeltConfig{
			Length:     fc.Belt.Length,
			TickPeriod: fc.Belt.TickPeriod.Microseconds(),
			EntryIndex: entry,
			ExitIndex:  exit,
		},
		Workers: sim.WorkerConfig{
			PerSlot:          fc.Workers.PerSlot,
			Slots:            fc.Workers.Slots,
			AssemblyDuration: fc.Workers.AssemblyDuration.Microseconds(),
		},
		Run: sim.RunConfig{
			Seed:       fc.Seed,
			Horizon:    fc.Run.Horizon.Microseconds(),
			MaxTicks:   fc.Run.MaxTicks,
			Realtime:   fc.Run.Realtime,
			Speed:      fc.Run.Speed,
			TraceLevel: fc.Run.TraceLevel,
		},
	}
}

// Validate checks the simulator configuration, the arrival spec, and that
// every recipe component can arrive at all. Failures wrap sim.ErrInvalidConfiguration.
func (fc *FileConfig) Validate() error {
	if err := fc.ToSimConfig().Validate(); err != nil {
		return err
	}
	if err := fc.Arrivals.Validate(); err != nil {
		return err
	}
	arriving := make(map[string]bool)
	for _, id := range fc.Arrivals.Alphabet {
		arriving[id] = true
	}
	for _, a := range fc.Arrivals.Script {
		arriving[a.Component] = true
	}
	for _, id := range fc.Recipe.Components {
		if !arriving[id] {
			return fmt.Errorf("%w: recipe component %q never arrives on the belt", sim.ErrInvalidConfiguration, id)
		}
	}
	return nil
}
