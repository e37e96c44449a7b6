// Package schema declares the onboarding wizard's steps and fields and
// validates form input against them.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed steps.yaml
var defaultDocument []byte

// FieldType is the primitive type of a form field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeEnum    FieldType = "enum"
	FieldTypeBoolean FieldType = "boolean"
)

// CheckRule names a cross-step rule evaluated on accumulated values.
type CheckRule string

const (
	CheckIsTrue  CheckRule = "is_true"
	CheckPresent CheckRule = "present"
)

// Field describes one form input and the column it persists to.
type Field struct {
	Name           string    `yaml:"name" json:"name"`
	Column         string    `yaml:"column" json:"-"`
	Type           FieldType `yaml:"type" json:"type"`
	Required       bool      `yaml:"required" json:"required"`
	RequiredUnless string    `yaml:"required_unless" json:"required_unless,omitempty"`
	Enum           string    `yaml:"enum" json:"enum,omitempty"`
	Pattern        string    `yaml:"pattern" json:"pattern,omitempty"`
	MaxLength      int       `yaml:"max_length" json:"max_length,omitempty"`
	Message        string    `yaml:"message" json:"-"`

	pattern *regexp.Regexp
}

// Check is a rule over a field that may have been collected on an earlier step.
type Check struct {
	Field   string    `yaml:"field" json:"field"`
	Rule    CheckRule `yaml:"rule" json:"rule"`
	Message string    `yaml:"message" json:"message"`
}

// Step is one page of the wizard.
type Step struct {
	Index  int     `yaml:"index" json:"index"`
	Name   string  `yaml:"name" json:"name"`
	Title  string  `yaml:"title" json:"title"`
	Fields []Field `yaml:"fields" json:"fields"`
	Checks []Check `yaml:"checks" json:"checks,omitempty"`
}

type document struct {
	Enums map[string][]string `yaml:"enums"`
	Steps []Step              `yaml:"steps"`
}

// Schema is the parsed, validated wizard definition.
type Schema struct {
	steps    []Step
	enums    map[string][]string
	enumSets map[string]map[string]struct{}
	fields   map[string]Field
	nameStep int
}

var columnPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Default returns the embedded thirteen-step schema.
func Default() *Schema {
	s, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("embedded wizard schema: %v", err))
	}
	return s
}

// Load reads a schema override from path, or the default when path is empty.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("schema declares no steps")
	}

	s := &Schema{
		steps:    doc.Steps,
		enums:    doc.Enums,
		enumSets: make(map[string]map[string]struct{}, len(doc.Enums)),
		fields:   make(map[string]Field),
	}
	for name, values := range doc.Enums {
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		s.enumSets[name] = set
	}

	columns := make(map[string]string)
	for i := range s.steps {
		step := &s.steps[i]
		if step.Index != i+1 {
			return nil, fmt.Errorf("step %q has index %d, want %d", step.Name, step.Index, i+1)
		}
		for j := range step.Fields {
			f := &step.Fields[j]
			if f.Name == "" {
				return nil, fmt.Errorf("step %d: field without name", step.Index)
			}
			if _, dup := s.fields[f.Name]; dup {
				return nil, fmt.Errorf("field %s declared twice", f.Name)
			}
			if !columnPattern.MatchString(f.Column) {
				return nil, fmt.Errorf("field %s: invalid column %q", f.Name, f.Column)
			}
			if owner, dup := columns[f.Column]; dup {
				return nil, fmt.Errorf("column %s used by %s and %s", f.Column, owner, f.Name)
			}
			columns[f.Column] = f.Name
			switch f.Type {
			case FieldTypeString, FieldTypeBoolean:
			case FieldTypeEnum:
				if _, ok := s.enumSets[f.Enum]; !ok {
					return nil, fmt.Errorf("field %s: unknown enum %q", f.Name, f.Enum)
				}
			default:
				return nil, fmt.Errorf("field %s: unknown type %q", f.Name, f.Type)
			}
			if f.Pattern != "" {
				re, err := regexp.Compile(f.Pattern)
				if err != nil {
					return nil, fmt.Errorf("field %s: %w", f.Name, err)
				}
				f.pattern = re
			}
			s.fields[f.Name] = *f
		}
	}

	for _, step := range s.steps {
		for _, f := range step.Fields {
			if f.RequiredUnless == "" {
				continue
			}
			cond, ok := s.fields[f.RequiredUnless]
			if !ok || cond.Type != FieldTypeBoolean {
				return nil, fmt.Errorf("field %s: required_unless must name a boolean field", f.Name)
			}
		}
		for _, c := range step.Checks {
			if _, ok := s.fields[c.Field]; !ok {
				return nil, fmt.Errorf("step %d: check on unknown field %s", step.Index, c.Field)
			}
			if c.Rule != CheckIsTrue && c.Rule != CheckPresent {
				return nil, fmt.Errorf("step %d: unknown check rule %q", step.Index, c.Rule)
			}
		}
	}

	for _, step := range s.steps {
		if step.declares("firstName") && step.declares("lastName") {
			s.nameStep = step.Index
			break
		}
	}
	return s, nil
}

func (st Step) declares(name string) bool {
	for _, f := range st.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Steps returns the number of wizard steps.
func (s *Schema) Steps() int { return len(s.steps) }

// Step returns the step with the given 1-based index.
func (s *Schema) Step(index int) (Step, bool) {
	if index < 1 || index > len(s.steps) {
		return Step{}, false
	}
	return s.steps[index-1], true
}

// AllSteps returns a copy of every step, for rendering.
func (s *Schema) AllSteps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Enums returns the closed value sets.
func (s *Schema) Enums() map[string][]string { return s.enums }

// NameStep is the first step collecting both first and last name, 0 if none does.
func (s *Schema) NameStep() int { return s.nameStep }

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}
