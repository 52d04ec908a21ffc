package workflow

import (
	"fmt"
	"sort"

	"github.com/CodeGandee/invokeai-go-client/model/graph"
)

// BuildSubmission renders the document plus the current input values into the
// wire-format graph the remote engine executes.  It never mutates the handle
// or the document, so building twice without intervening edits yields
// identical submissions.
//
// A non-empty boardID overrides the board field of every output-capable node
// whose board the form exposes, so the run's images land on that board.
// Board fields the form does not expose keep whatever the document routed.
func (h *Handle) BuildSubmission(boardID string) (*graph.Submission, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buildSubmission(boardID)
}

func (h *Handle) buildSubmission(boardID string) (*graph.Submission, error) {
	submission := &graph.Submission{
		Nodes: make(map[string]map[string]interface{}, len(h.document.Nodes)),
	}
	overrides := h.liveValues()
	exposesBoard := h.boardExposure()
	for _, id := range h.orderedNodeIDs() {
		node := h.document.Node(id)
		if node == nil {
			continue
		}
		if node.Type == "" {
			return nil, fmt.Errorf("node %s has no type", id)
		}
		payload := map[string]interface{}{
			"id":   id,
			"type": node.Type,
		}
		for name, schema := range node.Fields {
			value, ok := overrides[id][name]
			if !ok {
				value = schema.Value
			}
			if value == nil {
				continue
			}
			payload[name] = value
		}
		if boardID != "" && graph.IsOutputCapable(node.Type) && exposesBoard[id] {
			payload[graph.BoardFieldName] = map[string]interface{}{"board_id": boardID}
		}
		submission.Nodes[id] = payload
	}
	submission.Edges = make([]*graph.Edge, len(h.document.Edges))
	for i, edge := range h.document.Edges {
		copied := *edge
		submission.Edges[i] = &copied
	}
	return submission, nil
}

// liveValues collects the wire value of every live field instance keyed by
// node and field name.  Unset fields are omitted so node defaults apply.
func (h *Handle) liveValues() map[string]map[string]interface{} {
	values := map[string]map[string]interface{}{}
	record := func(nodeID, fieldName string, wire interface{}) {
		if wire == nil {
			return
		}
		fields := values[nodeID]
		if fields == nil {
			fields = map[string]interface{}{}
			values[nodeID] = fields
		}
		fields[fieldName] = wire
	}
	for _, input := range h.inputs {
		record(input.NodeID, input.FieldName, input.Field.ToWire())
	}
	for nodeID, slots := range h.modelSlots {
		for fieldName, identifier := range slots {
			record(nodeID, fieldName, identifier.ToWire())
		}
	}
	return values
}

// boardExposure reports, per node id, whether any exposed input addresses
// that node's board field.
func (h *Handle) boardExposure() map[string]bool {
	exposed := map[string]bool{}
	for _, input := range h.inputs {
		if input.FieldName == graph.BoardFieldName {
			exposed[input.NodeID] = true
		}
	}
	return exposed
}

// orderedNodeIDs yields the node ids in document declaration order; ids the
// order list misses follow sorted, keeping the sequence deterministic.
func (h *Handle) orderedNodeIDs() []string {
	seen := make(map[string]bool, len(h.document.NodeOrder))
	ids := make([]string, 0, len(h.document.Nodes))
	for _, id := range h.document.NodeOrder {
		if h.document.Node(id) != nil && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var unlisted []string
	for id := range h.document.Nodes {
		if !seen[id] {
			unlisted = append(unlisted, id)
		}
	}
	sort.Strings(unlisted)
	return append(ids, unlisted...)
}
