// Package model holds the workflow document model: the graph+form JSON a
// visual workflow editor produces, parsed into nodes, edges and the ordered
// form tree.  Documents are immutable once loaded; the workflow handle edits
// live field instances materialised from them, never the schemas.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/CodeGandee/invokeai-go-client/model/form"
	"github.com/CodeGandee/invokeai-go-client/model/graph"
)

// Document is a parsed workflow document.
type Document struct {
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Version     string                 `json:"version,omitempty"`
	Nodes       map[string]*graph.Node `json:"nodes"`
	Edges       []*graph.Edge          `json:"edges,omitempty"`
	Form        *form.Form             `json:"form,omitempty"`

	// NodeOrder preserves the declaration order of the nodes object; output
	// mapping and board overrides iterate in this order.
	NodeOrder []string `json:"-"`

	// Extra keeps unrecognised top-level keys for lossless re-serialisation.
	Extra map[string]json.RawMessage `json:"-"`
}

// ExposedField is the read-only projection of one form leaf that resolves to
// an existing node field.
type ExposedField struct {
	NodeID    string
	FieldName string
	ElementID string
	Label     string
	Schema    *graph.FieldSchema
}

// OutputNode describes one output-capable node of the document.
type OutputNode struct {
	NodeID            string
	NodeType          string
	ExposesBoardField bool
}

// MalformedWorkflowError reports a document that cannot be parsed or whose
// structure is internally inconsistent.
type MalformedWorkflowError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *MalformedWorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed workflow: %s: %v", e.Reason, e.Err)
	}
	return "malformed workflow: " + e.Reason
}

// Unwrap exposes the underlying cause.
func (e *MalformedWorkflowError) Unwrap() error { return e.Err }

var documentKeys = []string{"name", "description", "version", "nodes", "edges", "form"}

// Parse decodes a raw workflow document.  Unknown keys anywhere in the
// structure are preserved, never dropped; structural problems beyond JSON
// syntax are reported by Validate, not here.
func Parse(data []byte) (*Document, error) {
	type alias Document
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, &MalformedWorkflowError{Reason: "invalid document JSON", Err: err}
	}
	document := (*Document)(&known)
	if document.Nodes == nil {
		document.Nodes = map[string]*graph.Node{}
	}
	for id, node := range document.Nodes {
		if node.ID == "" {
			node.ID = id
		}
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err == nil {
		if raw, ok := all["nodes"]; ok {
			document.NodeOrder = objectKeyOrder(raw)
		}
		for _, key := range documentKeys {
			delete(all, key)
		}
		if len(all) > 0 {
			document.Extra = all
		}
	}
	return document, nil
}

// MarshalJSON merges preserved unknown keys back into the document.
func (d *Document) MarshalJSON() ([]byte, error) {
	type alias Document
	data, err := json.Marshal((*alias)(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return data, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, raw := range d.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = raw
		}
	}
	return json.Marshal(merged)
}

// Node returns the node with the given id, or nil.
func (d *Document) Node(id string) *graph.Node {
	if d == nil {
		return nil
	}
	return d.Nodes[id]
}

// ExposedFields walks the form tree in pre-order and yields every leaf that
// resolves to an existing node field, in document element order.  Leaves
// referencing a vanished node or field are skipped; Validate reports them.
// The position in the returned slice IS the stable input index.
func (d *Document) ExposedFields() []*ExposedField {
	var exposed []*ExposedField
	if d == nil || d.Form == nil {
		return exposed
	}
	for _, element := range d.Form.FieldElements() {
		node := d.Nodes[element.Field.NodeID]
		if node == nil {
			continue
		}
		schema := node.Field(element.Field.FieldName)
		if schema == nil {
			continue
		}
		label := element.Label
		if label == "" {
			label = schema.Label
		}
		if label == "" {
			label = element.Field.FieldName
		}
		exposed = append(exposed, &ExposedField{
			NodeID:    element.Field.NodeID,
			FieldName: element.Field.FieldName,
			ElementID: element.ID,
			Label:     label,
			Schema:    schema,
		})
	}
	return exposed
}

// OutputNodes yields the output-capable nodes in declaration order.  A node
// exposes a board field iff some exposed input names the canonical board
// field on it.
func (d *Document) OutputNodes() []*OutputNode {
	if d == nil {
		return nil
	}
	exposesBoard := map[string]bool{}
	for _, input := range d.ExposedFields() {
		if input.FieldName == graph.BoardFieldName {
			exposesBoard[input.NodeID] = true
		}
	}
	var outputs []*OutputNode
	for _, id := range d.orderedNodeIDs() {
		node := d.Nodes[id]
		if node == nil || !graph.IsOutputCapable(node.Type) {
			continue
		}
		outputs = append(outputs, &OutputNode{
			NodeID:            id,
			NodeType:          node.Type,
			ExposesBoardField: exposesBoard[id],
		})
	}
	return outputs
}

// Validate performs a best-effort structural validation.  The returned slice
// is empty when the document is sound; otherwise it contains human-readable
// issue descriptions.  Loading stays permissive – strict callers reject on
// any issue.
func (d *Document) Validate() []error {
	var issues []error
	if d == nil {
		return []error{fmt.Errorf("document is nil")}
	}
	if len(d.Nodes) == 0 {
		issues = append(issues, fmt.Errorf("document has no nodes"))
	}
	for id, node := range d.Nodes {
		if node == nil {
			issues = append(issues, fmt.Errorf("node %s is nil", id))
			continue
		}
		if node.Type == "" {
			issues = append(issues, fmt.Errorf("node %s has no type", id))
		}
	}
	for i, edge := range d.Edges {
		if edge == nil {
			issues = append(issues, fmt.Errorf("edge %d is nil", i))
			continue
		}
		for _, end := range []struct {
			side     string
			endpoint graph.Endpoint
		}{{"source", edge.Source}, {"destination", edge.Destination}} {
			if d.Nodes[end.endpoint.NodeID] == nil {
				issues = append(issues, fmt.Errorf("edge %d %s refers to unknown node %s", i, end.side, end.endpoint.NodeID))
			}
		}
	}
	if d.Form != nil {
		d.Form.Walk(func(element *form.Element) bool {
			if !element.IsField() {
				return true
			}
			node := d.Nodes[element.Field.NodeID]
			if node == nil {
				issues = append(issues, fmt.Errorf("form element %s refers to unknown node %s", element.ID, element.Field.NodeID))
				return true
			}
			if node.Field(element.Field.FieldName) == nil {
				issues = append(issues, fmt.Errorf("form element %s refers to unknown field %s.%s", element.ID, element.Field.NodeID, element.Field.FieldName))
			}
			return true
		})
	}
	return issues
}

// Clone creates a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{
		Name:        d.Name,
		Description: d.Description,
		Version:     d.Version,
		Form:        d.Form.Clone(),
	}
	if d.Nodes != nil {
		clone.Nodes = make(map[string]*graph.Node, len(d.Nodes))
		for id, node := range d.Nodes {
			clone.Nodes[id] = node.Clone()
		}
	}
	if d.Edges != nil {
		clone.Edges = make([]*graph.Edge, len(d.Edges))
		for i, edge := range d.Edges {
			copied := *edge
			clone.Edges[i] = &copied
		}
	}
	if d.NodeOrder != nil {
		clone.NodeOrder = append([]string(nil), d.NodeOrder...)
	}
	if d.Extra != nil {
		clone.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for key, raw := range d.Extra {
			clone.Extra[key] = append(json.RawMessage(nil), raw...)
		}
	}
	return clone
}

// orderedNodeIDs returns node ids in declaration order, appending any node
// missing from NodeOrder (programmatically built documents) in sorted order.
func (d *Document) orderedNodeIDs() []string {
	seen := make(map[string]bool, len(d.NodeOrder))
	ids := make([]string, 0, len(d.Nodes))
	for _, id := range d.NodeOrder {
		if _, ok := d.Nodes[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == len(d.Nodes) {
		return ids
	}
	var rest []string
	for id := range d.Nodes {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

// objectKeyOrder reads the key order of a JSON object without decoding the
// values; encoding/json maps do not preserve it.
func objectKeyOrder(raw json.RawMessage) []string {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	token, err := decoder.Token()
	if err != nil {
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil
	}
	var order []string
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return order
		}
		key, ok := token.(string)
		if !ok {
			return order
		}
		var skip json.RawMessage
		if err := decoder.Decode(&skip); err != nil {
			return order
		}
		order = append(order, key)
	}
	return order
}
