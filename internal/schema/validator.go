package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Values holds form input keyed by field name.
type Values map[string]any

// Result is the outcome of validating one step.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

const (
	msgRequired = "This field is required"
	msgText     = "Must be text"
	msgBoolean  = "Must be true or false"
	msgTooLong  = "Must be at most %d characters"
	msgInvalid  = "Invalid format"
	msgEnum     = "Must be one of: %s"
)

// ValidateStep checks the fields and cross-step checks of one step.
// values should hold everything collected so far, so checks can see
// fields from earlier steps.
func (s *Schema) ValidateStep(index int, values Values) Result {
	step, ok := s.Step(index)
	if !ok {
		return Result{Errors: map[string]string{"step": fmt.Sprintf("unknown step %d", index)}}
	}

	errs := make(map[string]string)
	for _, f := range step.Fields {
		if msg := s.validateField(f, values); msg != "" {
			errs[f.Name] = msg
		}
	}
	for _, c := range step.Checks {
		if _, failed := errs[c.Field]; failed {
			continue
		}
		if !checkPasses(c, values) {
			errs[c.Field] = c.Message
		}
	}

	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Valid: true}
}

func (s *Schema) validateField(f Field, values Values) string {
	required := f.Required
	if f.RequiredUnless != "" {
		if flag, _ := Bool(values[f.RequiredUnless]); flag {
			return ""
		}
		required = true
	}

	raw, present := values[f.Name]
	switch f.Type {
	case FieldTypeBoolean:
		flag, ok := Bool(raw)
		if present && raw != nil && !ok {
			return msgBoolean
		}
		if required && !flag {
			return f.requiredMessage()
		}
		return ""
	default:
		text, ok := Text(raw)
		if present && raw != nil && !ok {
			return msgText
		}
		if text == "" {
			if required {
				return f.requiredMessage()
			}
			return ""
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(text) > f.MaxLength {
			return fmt.Sprintf(msgTooLong, f.MaxLength)
		}
		if f.Type == FieldTypeEnum {
			if _, ok := s.enumSets[f.Enum][text]; !ok {
				return fmt.Sprintf(msgEnum, strings.Join(s.enums[f.Enum], ", "))
			}
		}
		if f.pattern != nil && !f.pattern.MatchString(text) {
			if f.Message != "" {
				return f.Message
			}
			return msgInvalid
		}
		return ""
	}
}

func (f Field) requiredMessage() string {
	if f.Message != "" {
		return f.Message
	}
	return msgRequired
}

func checkPasses(c Check, values Values) bool {
	switch c.Rule {
	case CheckIsTrue:
		flag, _ := Bool(values[c.Field])
		return flag
	case CheckPresent:
		text, _ := Text(values[c.Field])
		return text != ""
	}
	return false
}

// Text coerces a form value to trimmed text.
func Text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(t), true
	case *string:
		if t == nil {
			return "", true
		}
		return strings.TrimSpace(*t), true
	default:
		return "", false
	}
}

// Bool coerces a form value to a boolean; form posts may send "true"/"on".
func Bool(v any) (bool, bool) {
	switch t := v.(type) {
	case nil:
		return false, true
	case bool:
		return t, true
	case *bool:
		return t != nil && *t, true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if s == "" {
			return false, true
		}
		if s == "on" {
			return true, true
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

// Columns maps one step's values to their persisted columns.
// Empty text is stored as NULL.
func (s *Schema) Columns(index int, values Values) map[string]any {
	step, ok := s.Step(index)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(step.Fields))
	for _, f := range step.Fields {
		switch f.Type {
		case FieldTypeBoolean:
			flag, _ := Bool(values[f.Name])
			out[f.Column] = flag
		default:
			text, _ := Text(values[f.Name])
			if text == "" {
				out[f.Column] = nil
			} else {
				out[f.Column] = text
			}
		}
	}
	return out
}

// ValuesFromColumns rebuilds form values from a stored column map.
func (s *Schema) ValuesFromColumns(columns map[string]any) Values {
	values := make(Values, len(s.fields))
	for name, f := range s.fields {
		v, ok := columns[f.Column]
		if !ok || v == nil {
			continue
		}
		values[name] = v
	}
	return values
}

// StepValues picks the values declared on one step.
func (s *Schema) StepValues(index int, values Values) Values {
	step, ok := s.Step(index)
	if !ok {
		return Values{}
	}
	out := make(Values, len(step.Fields))
	for _, f := range step.Fields {
		if v, ok := values[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}

// Clone copies the map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
