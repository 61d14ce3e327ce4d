package harness

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.cue
var scenarioSchema string

// SchemaError reports a scenario document rejected by the CUE schema.
type SchemaError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateScenarioFile checks a scenario file against the embedded schema
// before any Go-level decoding, so that type errors point at the document.
func ValidateScenarioFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &SchemaError{Path: path, Message: fmt.Sprintf("failed to read scenario file: %v", err)}
	}
	if err := ValidateScenarioDocument(data); err != nil {
		return &SchemaError{Path: path, Message: err.Error()}
	}
	return nil
}

// ValidateScenarioDocument unifies a YAML document with #Scenario and
// requires the result to be concrete.
func ValidateScenarioDocument(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %w", err)
	}
	return nil
}
