package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a set of pre-buried
// capsules, a viewer walking and waiting through a flow of steps, and
// assertions on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the clock instant the scenario begins at, RFC 3339.
	Start string `yaml:"start"`

	// Capsules are buried before the flow runs.
	Capsules []CapsuleSpec `yaml:"capsules"`

	// Flow is the ordered list of steps to execute.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state after the flow completes.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// CapsuleSpec describes a pre-buried capsule in scenario shorthand.
type CapsuleSpec struct {
	ID      string  `yaml:"id"`
	Title   string  `yaml:"title"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Radius  float64 `yaml:"radius"`
	Unlock  string  `yaml:"unlock"` // RFC 3339
	Private bool    `yaml:"private,omitempty"`
	Key     string  `yaml:"key,omitempty"`
}

// Step is one scenario action.
//
// Ops:
//   - "move":    reposition the viewer to lat/lon; omitting both clears
//     the position (no fix available)
//   - "advance": move the clock forward by duration
//   - "unlock":  attempt an unlock, optionally with a key
//   - "map":     aggregate hotspots at the current position
//   - "discover": list discovered capsules
//   - "delete":  delete a capsule
type Step struct {
	Op string `yaml:"op"`

	Capsule  string   `yaml:"capsule,omitempty"`
	Key      string   `yaml:"key,omitempty"`
	Lat      *float64 `yaml:"lat,omitempty"`
	Lon      *float64 `yaml:"lon,omitempty"`
	Duration string   `yaml:"duration,omitempty"`

	// Expect optionally validates the unlock decision of this step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected unlock outcome of a step.
type ExpectClause struct {
	State  string `yaml:"state"`
	Reason string `yaml:"reason,omitempty"`
}

// Assertion validates final state.
//
// Types:
//   - "unlocked":   the capsule's persisted isUnlocked flag matches Value
//   - "discovered": the discovery ledger contains exactly Capsules, in order
type Assertion struct {
	Type     string   `yaml:"type"`
	Capsule  string   `yaml:"capsule,omitempty"`
	Value    bool     `yaml:"value,omitempty"`
	Capsules []string `yaml:"capsules,omitempty"`
}

// Assertion type constants.
const (
	AssertUnlocked   = "unlocked"
	AssertDiscovered = "discovered"
)

// Step op constants.
const (
	OpMove     = "move"
	OpAdvance  = "advance"
	OpUnlock   = "unlock"
	OpMap      = "map"
	OpDiscover = "discover"
	OpDelete   = "delete"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently skipping checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
		return fmt.Errorf("start must be RFC 3339: %w", err)
	}
	if len(s.Capsules) == 0 {
		return fmt.Errorf("capsules list is required and must be non-empty")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, c := range s.Capsules {
		if c.ID == "" {
			return fmt.Errorf("capsules[%d]: id is required", i)
		}
		if c.Title == "" {
			return fmt.Errorf("capsules[%d]: title is required", i)
		}
		if _, err := time.Parse(time.RFC3339, c.Unlock); err != nil {
			return fmt.Errorf("capsules[%d]: unlock must be RFC 3339: %w", i, err)
		}
		if c.Radius <= 0 {
			return fmt.Errorf("capsules[%d]: radius must be positive", i)
		}
		if !c.Private && c.Key != "" {
			return fmt.Errorf("capsules[%d]: key requires private", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertUnlocked:
			if a.Capsule == "" {
				return fmt.Errorf("assertions[%d]: capsule is required for unlocked", i)
			}
		case AssertDiscovered:
			// An empty capsules list asserts nothing was discovered.
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}

	return nil
}

// validateStep validates a single flow step based on its op.
func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpMove:
		if (step.Lat == nil) != (step.Lon == nil) {
			return fmt.Errorf("flow[%d]: move needs both lat and lon, or neither", index)
		}
	case OpAdvance:
		if step.Duration == "" {
			return fmt.Errorf("flow[%d]: advance requires duration", index)
		}
		if _, err := time.ParseDuration(step.Duration); err != nil {
			return fmt.Errorf("flow[%d]: bad duration: %w", index, err)
		}
	case OpUnlock, OpDelete:
		if step.Capsule == "" {
			return fmt.Errorf("flow[%d]: %s requires capsule", index, step.Op)
		}
	case OpMap, OpDiscover:
		// No arguments.
	case "":
		return fmt.Errorf("flow[%d]: op is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown op %q", index, step.Op)
	}

	if step.Expect != nil && step.Op != OpUnlock {
		return fmt.Errorf("flow[%d]: expect only applies to unlock", index)
	}
	if step.Expect != nil && step.Expect.State == "" {
		return fmt.Errorf("flow[%d].expect: state is required", index)
	}
	return nil
}
