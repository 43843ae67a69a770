package workload

import (
	"fmt"
	"sort"
	"time"

	"github.com/inference-sim/beltsim/sim"
)

// Arrival processes accepted in ArrivalSpec.Process.
const (
	ProcessUniform  = "uniform"
	ProcessPoisson  = "poisson"
	ProcessConstant = "constant"
	ProcessScripted = "scripted"
)

var validProcesses = map[string]bool{
	ProcessUniform:  true,
	ProcessPoisson:  true,
	ProcessConstant: true,
	ProcessScripted: true,
}

// ArrivalSpec describes how components enter the line.
//
// uniform draws gaps from [min_interval, max_interval]; poisson uses interval
// as the mean gap; constant emits one arrival per interval. Each arrival picks
// its component uniformly from alphabet, which may contain ids the recipe does
// not use. scripted ignores all of the above and replays script.
type ArrivalSpec struct {
	Process     string            `yaml:"process"`
	MinInterval time.Duration     `yaml:"min_interval,omitempty"`
	MaxInterval time.Duration     `yaml:"max_interval,omitempty"`
	Interval    time.Duration     `yaml:"interval,omitempty"`
	Alphabet    []string          `yaml:"alphabet,omitempty"`
	Script      []ScriptedArrival `yaml:"script,omitempty"`
}

// ScriptedArrival is one entry of a scripted arrival stream.
type ScriptedArrival struct {
	At        time.Duration `yaml:"at"`
	Component string        `yaml:"component"`
}

// Validate checks that all fields of the arrival spec are valid.
// Every failure wraps sim.ErrInvalidConfiguration.
func (s *ArrivalSpec) Validate() error {
	if !validProcesses[s.Process] {
		return fmt.Errorf("%w: unknown arrival process %q; valid: %s",
			sim.ErrInvalidConfiguration, s.Process, validProcessNames())
	}
	if s.Process == ProcessScripted {
		return s.validateScript()
	}

	switch s.Process {
	case ProcessUniform:
		if s.MinInterval < 0 || s.MaxInterval <= 0 || s.MinInterval > s.MaxInterval {
			return fmt.Errorf("%w: uniform arrivals need 0 <= min_interval <= max_interval and max_interval > 0, got [%s, %s]",
				sim.ErrInvalidConfiguration, s.MinInterval, s.MaxInterval)
		}
	case ProcessPoisson, ProcessConstant:
		if s.Interval <= 0 {
			return fmt.Errorf("%w: %s arrivals need a positive interval, got %s",
				sim.ErrInvalidConfiguration, s.Process, s.Interval)
		}
	}
	if len(s.Alphabet) == 0 {
		return fmt.Errorf("%w: arrival alphabet is empty", sim.ErrInvalidConfiguration)
	}
	for i, id := range s.Alphabet {
		if id == "" {
			return fmt.Errorf("%w: arrival alphabet entry %d is empty", sim.ErrInvalidConfiguration, i)
		}
	}
	return nil
}

func (s *ArrivalSpec) validateScript() error {
	if len(s.Script) == 0 {
		return fmt.Errorf("%w: scripted arrivals need a non-empty script", sim.ErrInvalidConfiguration)
	}
	for i, a := range s.Script {
		if a.At < 0 {
			return fmt.Errorf("%w: script[%d] arrives at negative time %s", sim.ErrInvalidConfiguration, i, a.At)
		}
		if a.Component == "" {
			return fmt.Errorf("%w: script[%d] has no component", sim.ErrInvalidConfiguration, i)
		}
	}
	return nil
}

func validProcessNames() string {
	names := make([]string, 0, len(validProcesses))
	for name := range validProcesses {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprint(names)
}

// NewArrivalSource builds the arrival stream described by spec.
// Random processes draw from the arrival subsystems of rng.
func NewArrivalSource(spec ArrivalSpec, rng *sim.PartitionedRNG) (sim.ArrivalSource, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Process == ProcessScripted {
		arrivals := make([]sim.Arrival, len(spec.Script))
		for i, a := range spec.Script {
			arrivals[i] = sim.Arrival{Time: micros(a.At), Component: sim.ComponentID(a.Component)}
		}
		return NewReplay(arrivals), nil
	}
	return NewGenerator(spec, rng), nil
}
