package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/marbles/internal/compiler"
)

// Scenario is a marble test described in YAML.
//
// Sources are compiled first, then every expectation is registered, then the
// scheduler is flushed.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Sources are the hot and cold sources under test.
	Sources []SourceDef `yaml:"sources"`

	// Expect lists timeline expectations.
	Expect []ObservableExpect `yaml:"expect,omitempty"`

	// Subscriptions lists subscription log expectations.
	Subscriptions []SubscriptionExpect `yaml:"subscriptions,omitempty"`
}

// SourceDef defines one named source.
type SourceDef struct {
	Name    string         `yaml:"name"`
	Kind    string         `yaml:"kind"` // "hot" or "cold"
	Diagram string         `yaml:"diagram"`
	Values  map[string]any `yaml:"values,omitempty"`

	// Error is the payload of # in Diagram.
	Error string `yaml:"error,omitempty"`
}

// ObservableExpect expects a timeline from a source.
type ObservableExpect struct {
	Source string `yaml:"source"`

	// Subscription is an optional subscription diagram: ^ delays the
	// subscription, ! forces an unsubscription.
	Subscription string         `yaml:"subscription,omitempty"`
	Diagram      string         `yaml:"diagram"`
	Values       map[string]any `yaml:"values,omitempty"`
	Error        string         `yaml:"error,omitempty"`
}

// SubscriptionExpect expects the subscription logs of a source.
type SubscriptionExpect struct {
	Source   string   `yaml:"source"`
	Diagrams []string `yaml:"diagrams"`
}

// Source kinds.
const (
	SourceHot  = "hot"
	SourceCold = "cold"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "subscription:" vs "subscriptions:".
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

// validateScenario checks that required fields are present and that every
// expectation refers to a defined source.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Sources) == 0 {
		return fmt.Errorf("sources list is required and must be non-empty")
	}
	if len(s.Expect) == 0 && len(s.Subscriptions) == 0 {
		return fmt.Errorf("at least one expect or subscriptions entry is required")
	}

	names := make(map[string]bool, len(s.Sources))
	for i, src := range s.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if names[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		names[src.Name] = true
		if src.Kind != SourceHot && src.Kind != SourceCold {
			return fmt.Errorf("sources[%d]: kind must be %q or %q, got %q", i, SourceHot, SourceCold, src.Kind)
		}
	}

	for i, exp := range s.Expect {
		if !names[exp.Source] {
			return fmt.Errorf("expect[%d]: unknown source %q", i, exp.Source)
		}
	}
	for i, exp := range s.Subscriptions {
		if !names[exp.Source] {
			return fmt.Errorf("subscriptions[%d]: unknown source %q", i, exp.Source)
		}
	}
	return nil
}

// Compile checks every diagram in the scenario without running anything.
// All malformed diagrams are reported, joined.
func (s *Scenario) Compile() error {
	var errs []error
	for i, src := range s.Sources {
		check := compiler.CheckCold
		if src.Kind == SourceHot {
			check = compiler.CheckHot
		}
		if err := check(src.Diagram); err != nil {
			errs = append(errs, fmt.Errorf("sources[%d] %q: %w", i, src.Name, err))
			continue
		}
		if _, err := compiler.ParseValueDiagram(src.Diagram, compiler.Options{}); err != nil {
			errs = append(errs, fmt.Errorf("sources[%d] %q: %w", i, src.Name, err))
		}
	}
	for i, exp := range s.Expect {
		if exp.Subscription != "" {
			if _, err := compiler.ParseSubscriptionDiagram(exp.Subscription); err != nil {
				errs = append(errs, fmt.Errorf("expect[%d].subscription: %w", i, err))
			}
		}
		if _, err := compiler.ParseValueDiagram(exp.Diagram, compiler.Options{}); err != nil {
			errs = append(errs, fmt.Errorf("expect[%d]: %w", i, err))
		}
	}
	for i, exp := range s.Subscriptions {
		for j, diagram := range exp.Diagrams {
			if _, err := compiler.ParseSubscriptionDiagram(diagram); err != nil {
				errs = append(errs, fmt.Errorf("subscriptions[%d].diagrams[%d]: %w", i, j, err))
			}
		}
	}
	return errors.Join(errs...)
}
