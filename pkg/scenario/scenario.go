// Package scenario is the command language of the custody CLI.
//
// A scenario is a YAML document listing steps, each naming one custody
// command and its arguments. Steps can bind the id they produce to an alias
// (`as`) and later steps may refer to that alias wherever an entity, request
// or transfer target is expected. A step may also declare that it expects a
// user-visible rejection.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/custody/pkg/core"
)

// Operation names.
const (
	OpConnect            = "connect"
	OpCreateRecord       = "create_record"
	OpCreateCollaborator = "create_collaborator"
	OpRequestPermission  = "request_permission"
	OpResolveRequest     = "resolve_request"
	OpRevokePermission   = "revoke_permission"
	OpWrite              = "write"
	OpLoad               = "load"
	OpGenerateOwner      = "generate_owner"
	OpRemoveOwner        = "remove_owner"
	OpTransfer           = "transfer"
	OpView               = "view"
)

// Ops lists every operation a step may name.
var Ops = []string{
	OpConnect, OpCreateRecord, OpCreateCollaborator, OpRequestPermission,
	OpResolveRequest, OpRevokePermission, OpWrite, OpLoad,
	OpGenerateOwner, OpRemoveOwner, OpTransfer, OpView,
}

// Expectations.
const (
	ExpectOK       = "ok"
	ExpectRejected = "rejected"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a named list of steps.
type Scenario struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one command. Only the fields relevant to Op are read.
type Step struct {
	Op          string        `yaml:"op" json:"op"`
	Name        string        `yaml:"name,omitempty" json:"name,omitempty"`
	Title       *string       `yaml:"title,omitempty" json:"title,omitempty"`
	Description *string       `yaml:"description,omitempty" json:"description,omitempty"`
	Metadata    core.Metadata `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Entity      string        `yaml:"entity,omitempty" json:"entity,omitempty"`
	Request     string        `yaml:"request,omitempty" json:"request,omitempty"`
	Target      string        `yaml:"target,omitempty" json:"target,omitempty"`
	Kind        string        `yaml:"kind,omitempty" json:"kind,omitempty"`
	Granted     bool          `yaml:"granted,omitempty" json:"granted,omitempty"`
	As          string        `yaml:"as,omitempty" json:"as,omitempty"`
	Expect      string        `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Validate checks the step shape without touching any service.
func (s Step) Validate() error {
	if !knownOp(s.Op) {
		return fmt.Errorf("%w: unknown op %q", ErrInvalidScenario, s.Op)
	}
	switch s.Expect {
	case "", ExpectOK, ExpectRejected:
	default:
		return fmt.Errorf("%w: unknown expectation %q", ErrInvalidScenario, s.Expect)
	}
	return nil
}

// Parse decodes a scenario document. Unknown fields are errors so typos in
// step arguments do not silently become empty values.
func Parse(data []byte) (Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	for i, step := range sc.Steps {
		if err := step.Validate(); err != nil {
			return Scenario{}, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return sc, nil
}

// Load reads and parses the scenario at path. A scenario without a name is
// named after its file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(sc.Name) == "" {
		sc.Name = path
	}
	return sc, nil
}

func knownOp(op string) bool {
	return slices.Contains(Ops, op)
}
