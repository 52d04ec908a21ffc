// Package graph holds the structural entities of a workflow document: nodes
// with their field schemas, and the edges connecting them.  Parsing keeps
// every unrecognised key in an explicit side-map that is merged back on
// re-serialisation, so a document survives a round-trip through a client
// that predates the upstream schema.
package graph

import (
	"encoding/json"
	"fmt"

	"github.com/CodeGandee/invokeai-go-client/model/field"
)

type (
	// FieldSchema describes one input slot of a node: its semantic kind,
	// optional default value and constraints.
	FieldSchema struct {
		Name        string      `json:"name,omitempty"`
		Type        field.Kind  `json:"type,omitempty"`
		Label       string      `json:"label,omitempty"`
		Value       interface{} `json:"value,omitempty"`
		Minimum     *float64    `json:"minimum,omitempty"`
		Maximum     *float64    `json:"maximum,omitempty"`
		MinLength   *int        `json:"min_length,omitempty"`
		MaxLength   *int        `json:"max_length,omitempty"`
		ElementType field.Kind  `json:"element_type,omitempty"`

		// Extra keeps unrecognised keys for lossless re-serialisation.
		Extra map[string]json.RawMessage `json:"-"`
	}

	// Node is one vertex of the workflow graph.
	Node struct {
		ID     string                  `json:"id"`
		Type   string                  `json:"type"`
		Fields map[string]*FieldSchema `json:"fields,omitempty"`

		Extra map[string]json.RawMessage `json:"-"`
	}

	// Endpoint addresses one side of an edge.
	Endpoint struct {
		NodeID string `json:"node_id"`
		Field  string `json:"field"`
	}

	// Edge connects a source node output to a destination node input.
	Edge struct {
		Source      Endpoint `json:"source"`
		Destination Endpoint `json:"destination"`
	}
)

// Materialize creates a live field instance from the schema, applying
// declared constraints and the default value.
func (s *FieldSchema) Materialize() (field.Field, error) {
	kind := s.Type
	if kind == "" {
		kind = field.KindString
	}
	var instance field.Field
	switch kind {
	case field.KindString:
		f := field.NewString(s.Name)
		f.MinLength = s.MinLength
		f.MaxLength = s.MaxLength
		instance = f
	case field.KindInteger:
		f := field.NewInteger(s.Name)
		if s.Minimum != nil {
			minimum := int(*s.Minimum)
			f.Minimum = &minimum
		}
		if s.Maximum != nil {
			maximum := int(*s.Maximum)
			f.Maximum = &maximum
		}
		instance = f
	case field.KindFloat:
		f := field.NewFloat(s.Name)
		f.Minimum = s.Minimum
		f.Maximum = s.Maximum
		instance = f
	case field.KindCollection:
		f := field.NewCollection(s.Name, s.ElementType)
		f.MinLength = s.MinLength
		f.MaxLength = s.MaxLength
		instance = f
	default:
		var err error
		if instance, err = field.New(kind, s.Name); err != nil {
			return nil, fmt.Errorf("field %q: %w", s.Name, err)
		}
	}
	if s.Value != nil {
		if err := instance.FromWire(s.Value); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

var fieldSchemaKeys = []string{"name", "type", "label", "value", "minimum", "maximum", "min_length", "max_length", "element_type"}

// UnmarshalJSON decodes the known schema keys and shelves the rest in Extra.
func (s *FieldSchema) UnmarshalJSON(data []byte) error {
	type alias FieldSchema
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*s = FieldSchema(known)
	s.Extra = sideMap(data, fieldSchemaKeys)
	return nil
}

// MarshalJSON merges Extra back under the known keys.
func (s *FieldSchema) MarshalJSON() ([]byte, error) {
	type alias FieldSchema
	return mergeExtra((*alias)(s), s.Extra)
}

var nodeKeys = []string{"id", "type", "fields"}

// UnmarshalJSON decodes the known node keys and shelves the rest in Extra.
func (n *Node) UnmarshalJSON(data []byte) error {
	type alias Node
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*n = Node(known)
	n.Extra = sideMap(data, nodeKeys)
	return nil
}

// MarshalJSON merges Extra back under the known keys.
func (n *Node) MarshalJSON() ([]byte, error) {
	type alias Node
	return mergeExtra((*alias)(n), n.Extra)
}

// WithField adds a field schema and returns the node for chaining.
func (n *Node) WithField(name string, kind field.Kind, value interface{}) *Node {
	if n.Fields == nil {
		n.Fields = map[string]*FieldSchema{}
	}
	n.Fields[name] = &FieldSchema{Name: name, Type: kind, Value: value}
	return n
}

// Field returns the schema of the named field, or nil when absent.
func (n *Node) Field(name string) *FieldSchema {
	if n == nil {
		return nil
	}
	return n.Fields[name]
}

// Clone creates a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{ID: n.ID, Type: n.Type}
	if n.Fields != nil {
		clone.Fields = make(map[string]*FieldSchema, len(n.Fields))
		for name, schema := range n.Fields {
			clone.Fields[name] = schema.Clone()
		}
	}
	clone.Extra = cloneRaw(n.Extra)
	return clone
}

// Clone creates a deep copy of the schema.  The default value is shared; it
// is treated as immutable once parsed.
func (s *FieldSchema) Clone() *FieldSchema {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Extra = cloneRaw(s.Extra)
	if s.Minimum != nil {
		minimum := *s.Minimum
		clone.Minimum = &minimum
	}
	if s.Maximum != nil {
		maximum := *s.Maximum
		clone.Maximum = &maximum
	}
	if s.MinLength != nil {
		minLength := *s.MinLength
		clone.MinLength = &minLength
	}
	if s.MaxLength != nil {
		maxLength := *s.MaxLength
		clone.MaxLength = &maxLength
	}
	return &clone
}

// sideMap extracts every key of data that is not in known.
func sideMap(data []byte, known []string) map[string]json.RawMessage {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil
	}
	for _, key := range known {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

// mergeExtra marshals value and overlays it onto the extra side-map; known
// keys win over stale extras.
func mergeExtra(value interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, raw := range extra {
		if _, ok := merged[key]; !ok {
			merged[key] = raw
		}
	}
	return json.Marshal(merged)
}

func cloneRaw(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	clone := make(map[string]json.RawMessage, len(extra))
	for key, raw := range extra {
		clone[key] = append(json.RawMessage(nil), raw...)
	}
	return clone
}
