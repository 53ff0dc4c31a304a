package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/nvellis/brandflow/internal/models"
)

// Violation is one schema violation, addressed by the dotted field path the
// validator reported. Paths are the repair map's keys after normalization.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validator checks specifications against the embedded CUE schema.
type Validator struct {
	// CUE evaluation is not safe for concurrent use on shared values.
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles the embedded schema and resolves the
// #BrandSpecification definition.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(Source)
	if err := schemaVal.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile embedded schema: %w", err)
	}

	def := schemaVal.LookupPath(cue.ParsePath("#BrandSpecification"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("schema has no #BrandSpecification definition: %w", err)
	}

	return &Validator{ctx: ctx, def: def}, nil
}

// Validate unifies the specification with the schema definition and returns
// every violation with its field path. An empty slice means the
// specification is schema-valid. The returned error covers only mechanical
// failures (the specification could not be encoded), never violations.
func (v *Validator) Validate(spec *models.BrandSpecification) ([]Violation, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode specification: %w", err)
	}
	return v.ValidateJSON(data)
}

// ValidateJSON validates a raw JSON document against the schema. Used for
// refined specifications that arrive as model output rather than as a
// struct built by the synthesizer.
func (v *Validator) ValidateJSON(data []byte) ([]Violation, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// JSON is a subset of CUE, so the document compiles directly.
	doc := v.ctx.CompileBytes(data)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("specification is not valid JSON: %w", err)
	}

	unified := v.def.Unify(doc)
	err := unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil, nil
	}

	var violations []Violation
	for _, e := range cueerrors.Errors(err) {
		violations = append(violations, Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: shortMessage(e),
		})
	}
	return violations, nil
}

// shortMessage renders a single CUE error without position information.
func shortMessage(e cueerrors.Error) string {
	format, args := e.Msg()
	return fmt.Sprintf(format, args...)
}
