// Package form models the ordered element tree a workflow document uses to
// surface node fields to the caller.  Container elements group children;
// node-field elements reference one (node, field) pair.  Element order is
// load-bearing: the pre-order walk of this tree assigns the stable input
// indices callers script against.
package form

import (
	"encoding/json"
)

// Element types recognised in the form tree.
const (
	TypeContainer = "container"
	TypeNodeField = "node-field"
)

type (
	// FieldRef points a node-field element at a concrete node input.
	FieldRef struct {
		NodeID    string `json:"node_id"`
		FieldName string `json:"field_name"`
	}

	// Element is one vertex of the form tree.
	Element struct {
		ID       string     `json:"id,omitempty"`
		Type     string     `json:"type"`
		Label    string     `json:"label,omitempty"`
		Field    *FieldRef  `json:"field,omitempty"`
		Children []*Element `json:"children,omitempty"`

		Extra map[string]json.RawMessage `json:"-"`
	}

	// Form is the ordered root element list.
	Form struct {
		Elements []*Element `json:"elements,omitempty"`

		Extra map[string]json.RawMessage `json:"-"`
	}
)

// IsField reports whether the element is a leaf referencing a node field.
func (e *Element) IsField() bool {
	return e != nil && e.Type == TypeNodeField && e.Field != nil
}

// Walk visits elements in pre-order, depth first, honouring document element
// order.  The visitor returns false to stop.
func (f *Form) Walk(visit func(*Element) bool) {
	if f == nil {
		return
	}
	for _, element := range f.Elements {
		if !walk(element, visit) {
			return
		}
	}
}

func walk(element *Element, visit func(*Element) bool) bool {
	if element == nil {
		return true
	}
	if !visit(element) {
		return false
	}
	for _, child := range element.Children {
		if !walk(child, visit) {
			return false
		}
	}
	return true
}

// FieldElements returns the node-field leaves in pre-order.
func (f *Form) FieldElements() []*Element {
	var leaves []*Element
	f.Walk(func(element *Element) bool {
		if element.IsField() {
			leaves = append(leaves, element)
		}
		return true
	})
	return leaves
}

var elementKeys = []string{"id", "type", "label", "field", "children"}

// UnmarshalJSON decodes known element keys and shelves the rest in Extra.
func (e *Element) UnmarshalJSON(data []byte) error {
	type alias Element
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*e = Element(known)
	e.Extra = sideMap(data, elementKeys)
	return nil
}

// MarshalJSON merges Extra back under the known keys.
func (e *Element) MarshalJSON() ([]byte, error) {
	type alias Element
	return mergeExtra((*alias)(e), e.Extra)
}

var formKeys = []string{"elements"}

// UnmarshalJSON decodes the element list and shelves unknown keys in Extra.
func (f *Form) UnmarshalJSON(data []byte) error {
	type alias Form
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*f = Form(known)
	f.Extra = sideMap(data, formKeys)
	return nil
}

// MarshalJSON merges Extra back under the known keys.
func (f *Form) MarshalJSON() ([]byte, error) {
	type alias Form
	return mergeExtra((*alias)(f), f.Extra)
}

// Clone deep-copies the form tree.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	clone := &Form{Extra: cloneRaw(f.Extra)}
	if f.Elements != nil {
		clone.Elements = make([]*Element, len(f.Elements))
		for i, element := range f.Elements {
			clone.Elements[i] = element.Clone()
		}
	}
	return clone
}

// Clone deep-copies the element subtree.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	clone := &Element{ID: e.ID, Type: e.Type, Label: e.Label, Extra: cloneRaw(e.Extra)}
	if e.Field != nil {
		ref := *e.Field
		clone.Field = &ref
	}
	if e.Children != nil {
		clone.Children = make([]*Element, len(e.Children))
		for i, child := range e.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

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
