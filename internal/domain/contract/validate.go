package contract

import (
	"encoding/json"
	"fmt"
)

// Violation is the verdict for a response that does not conform to its
// capability's contract. The foreman treats it like a delegation error for
// retry purposes.
type Violation struct {
	Capability string
	Reason     string
}

func (e *Violation) Error() string {
	return fmt.Sprintf("schema violation (%s): %s", e.Capability, e.Reason)
}

// Validate checks a worker payload against the capability's contract:
// the payload must be a JSON object whose discriminant field selects exactly
// one declared output variant, with all required fields present, all typed
// fields carrying the declared JSON type, and all closed fields within their
// enum. Validate is pure: identical inputs always yield the same verdict.
func (r *Registry) Validate(capability string, payload json.RawMessage) error {
	c, ok := r.Lookup(capability)
	if !ok {
		return fmt.Errorf("validate: no contract for capability %q", capability)
	}
	return ValidateAgainst(c, payload)
}

// ValidateAgainst checks a payload against an explicit contract.
func ValidateAgainst(c Contract, payload json.RawMessage) error {
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return &Violation{Capability: c.Capability, Reason: "payload is not a JSON object"}
	}

	raw, ok := obj[c.Discriminant]
	if !ok {
		return &Violation{
			Capability: c.Capability,
			Reason:     fmt.Sprintf("missing discriminant field %q", c.Discriminant),
		}
	}
	disc, ok := raw.(string)
	if !ok {
		return &Violation{
			Capability: c.Capability,
			Reason:     fmt.Sprintf("discriminant field %q must be a string", c.Discriminant),
		}
	}

	var matched *Variant
	for i := range c.Outputs {
		if c.Outputs[i].Name == disc {
			matched = &c.Outputs[i]
			break
		}
	}
	if matched == nil {
		return &Violation{
			Capability: c.Capability,
			Reason:     fmt.Sprintf("%q is not a declared output variant", disc),
		}
	}

	return checkFields(c.Capability, matched.Name, matched.Fields, obj)
}

// ValidateInput checks a node input against the capability's input schema.
// Used at plan admission so malformed inputs fail before any delegation.
func (r *Registry) ValidateInput(capability string, input json.RawMessage) error {
	c, ok := r.Lookup(capability)
	if !ok {
		return fmt.Errorf("validate input: no contract for capability %q", capability)
	}
	var obj map[string]any
	if err := json.Unmarshal(input, &obj); err != nil {
		return &Violation{Capability: capability, Reason: "input is not a JSON object"}
	}
	return checkFields(capability, "input", c.Input, obj)
}

func checkFields(capability, scope string, fields []Field, obj map[string]any) error {
	for _, f := range fields {
		val, present := obj[f.Name]
		if !present {
			if f.Required {
				return &Violation{
					Capability: capability,
					Reason:     fmt.Sprintf("%s: missing required field %q", scope, f.Name),
				}
			}
			continue
		}
		if !typeMatches(f.Type, val) {
			return &Violation{
				Capability: capability,
				Reason:     fmt.Sprintf("%s: field %q must be %s", scope, f.Name, f.Type),
			}
		}
		if len(f.Enum) > 0 {
			s, _ := val.(string)
			if !contains(f.Enum, s) {
				return &Violation{
					Capability: capability,
					Reason:     fmt.Sprintf("%s: field %q value %q not in %v", scope, f.Name, s, f.Enum),
				}
			}
		}
	}
	return nil
}

func typeMatches(t FieldType, val any) bool {
	switch t {
	case TypeString:
		_, ok := val.(string)
		return ok
	case TypeNumber:
		_, ok := val.(float64)
		return ok
	case TypeBool:
		_, ok := val.(bool)
		return ok
	case TypeList:
		_, ok := val.([]any)
		return ok
	case TypeObject:
		_, ok := val.(map[string]any)
		return ok
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
