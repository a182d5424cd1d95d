package fleet

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFailureProbability is the chance an operational machine fails on a tick.
const DefaultFailureProbability = 0.20

// ErrInvalidConfig is returned by New when the fleet configuration is unusable.
var ErrInvalidConfig = errors.New("invalid fleet config")

// Config fixes the fleet composition for the lifetime of a Fleet.
type Config struct {
	Machines           []string
	Faults             []string
	FailureProbability float64
}

// DefaultConfig returns the four-machine shop floor with its standard fault set.
func DefaultConfig() Config {
	return Config{
		Machines: []string{"I30", "I40", "I50", "H20"},
		Faults: []string{
			"Motor failure",
			"Lack of lubrication",
			"Electrical failure",
			"Overheating",
		},
		FailureProbability: DefaultFailureProbability,
	}
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	if len(c.Machines) == 0 {
		return fmt.Errorf("%w: at least one machine is required", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Machines))
	for i, name := range c.Machines {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: machine %d has an empty name", ErrInvalidConfig, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate machine %q", ErrInvalidConfig, name)
		}
		seen[name] = struct{}{}
	}
	if len(c.Faults) == 0 {
		return fmt.Errorf("%w: at least one fault description is required", ErrInvalidConfig)
	}
	for i, fault := range c.Faults {
		if strings.TrimSpace(fault) == "" {
			return fmt.Errorf("%w: fault %d is empty", ErrInvalidConfig, i)
		}
	}
	if c.FailureProbability < 0 || c.FailureProbability > 1 {
		return fmt.Errorf("%w: failure probability %.3f outside [0, 1]", ErrInvalidConfig, c.FailureProbability)
	}
	return nil
}

// clone detaches c from caller-owned slices.
func (c Config) clone() Config {
	return Config{
		Machines:           append([]string(nil), c.Machines...),
		Faults:             append([]string(nil), c.Faults...),
		FailureProbability: c.FailureProbability,
	}
}
