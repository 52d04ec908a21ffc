package model

import (
	"github.com/CodeGandee/invokeai-go-client/model/form"
	"github.com/CodeGandee/invokeai-go-client/model/graph"
)

// NewDocument creates an empty document with the given name.  Builders exist
// for tests and programmatic composition; production documents normally come
// from the loader.
func NewDocument(name string) *Document {
	return &Document{
		Name:  name,
		Nodes: map[string]*graph.Node{},
		Form:  &form.Form{},
	}
}

// AddNode adds a node and returns it for further configuration.
func (d *Document) AddNode(id, nodeType string) *graph.Node {
	node := &graph.Node{ID: id, Type: nodeType, Fields: map[string]*graph.FieldSchema{}}
	d.Nodes[id] = node
	d.NodeOrder = append(d.NodeOrder, id)
	return node
}

// Connect adds an edge from a source node output to a destination node
// input.
func (d *Document) Connect(sourceNode, sourceField, destinationNode, destinationField string) *Document {
	d.Edges = append(d.Edges, &graph.Edge{
		Source:      graph.Endpoint{NodeID: sourceNode, Field: sourceField},
		Destination: graph.Endpoint{NodeID: destinationNode, Field: destinationField},
	})
	return d
}

// Expose appends a node-field leaf to the form, surfacing the given field at
// the next input index.
func (d *Document) Expose(nodeID, fieldName, label string) *Document {
	if d.Form == nil {
		d.Form = &form.Form{}
	}
	d.Form.Elements = append(d.Form.Elements, &form.Element{
		ID:    nodeID + "." + fieldName,
		Type:  form.TypeNodeField,
		Label: label,
		Field: &form.FieldRef{NodeID: nodeID, FieldName: fieldName},
	})
	return d
}
