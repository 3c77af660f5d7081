// Package contract defines the worker registry: the static, exhaustive table
// from capability name to input/output contract, and the pure validator that
// checks worker responses against it.
package contract

// FieldType is the JSON type a schema field must carry.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeBool   FieldType = "bool"
	TypeList   FieldType = "list"
	TypeObject FieldType = "object"
)

// Field describes one field of an input schema or output variant.
// A non-empty Enum closes the field to the listed values.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Enum     []string  `json:"enum,omitempty"`
}

// Variant is one member of a capability's closed output set. Name is the
// value the discriminant field must carry for a response to match it.
type Variant struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Contract is the full input/output contract for one capability. A worker
// response must match exactly one output variant, selected by the
// discriminant field.
type Contract struct {
	Capability   string    `json:"capability"`
	Discriminant string    `json:"discriminant"`
	Input        []Field   `json:"input"`
	Outputs      []Variant `json:"outputs"`
}
