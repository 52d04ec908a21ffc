package graph

import (
	"encoding/json"
)

// Submission is the wire-format graph the remote execution engine accepts:
// per-node payloads holding static attributes merged with field wire values,
// plus the connecting edges.  It is rebuilt from scratch on every submit and
// never persisted client-side.
type Submission struct {
	ID    string                            `json:"id,omitempty"`
	Nodes map[string]map[string]interface{} `json:"nodes"`
	Edges []*Edge                           `json:"edges"`
}

// Clone deep-copies the submission so an accepted run stays immune to later
// field edits.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	clone := &Submission{ID: s.ID}
	if s.Nodes != nil {
		clone.Nodes = make(map[string]map[string]interface{}, len(s.Nodes))
		for id, payload := range s.Nodes {
			copied := make(map[string]interface{}, len(payload))
			for key, value := range payload {
				copied[key] = value
			}
			clone.Nodes[id] = copied
		}
	}
	if s.Edges != nil {
		clone.Edges = make([]*Edge, len(s.Edges))
		for i, edge := range s.Edges {
			copied := *edge
			clone.Edges[i] = &copied
		}
	}
	return clone
}

// Equal reports whether two submissions serialise identically.  Used by
// tests asserting that building is a pure function.
func (s *Submission) Equal(other *Submission) bool {
	left, err := json.Marshal(s)
	if err != nil {
		return false
	}
	right, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return string(left) == string(right)
}
