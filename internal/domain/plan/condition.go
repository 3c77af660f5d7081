package plan

import (
	"encoding/json"
	"fmt"
)

// Condition gates a node on a predicate over an earlier node's output.
// Conditions are declared at plan construction time; they are never inserted
// mid-run. A condition holds when the named field of the source node's output
// equals the expected value (numbers and booleans compare by their canonical
// string form).
type Condition struct {
	Node   string `json:"node"`
	Field  string `json:"field"`
	Equals string `json:"equals"`
}

// Met evaluates the condition against the source node's output. A missing
// output, an undecodable payload, or an absent field means the predicate
// does not hold; none of these are errors.
func (c *Condition) Met(output json.RawMessage) bool {
	if len(output) == 0 {
		return false
	}
	var payload map[string]any
	if err := json.Unmarshal(output, &payload); err != nil {
		return false
	}
	val, ok := payload[c.Field]
	if !ok {
		return false
	}
	switch v := val.(type) {
	case string:
		return v == c.Equals
	case bool:
		return fmt.Sprintf("%t", v) == c.Equals
	case float64:
		return trimFloat(v) == c.Equals
	default:
		return false
	}
}

// trimFloat renders a JSON number the way a human would write it:
// integers without a decimal point.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
