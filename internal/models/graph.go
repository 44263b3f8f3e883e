package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NodeType tags a graph node.
type NodeType string

// Node types used by the retrieval graph (query, document, chunk) and the
// concept graph (document, concept).
const (
	NodeQuery    NodeType = "query"
	NodeDocument NodeType = "document"
	NodeChunk    NodeType = "chunk"
	NodeConcept  NodeType = "concept"
)

// ErrInvalidGraph is returned when a graph payload fails validation.
var ErrInvalidGraph = errors.New("invalid graph")

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeQuery, NodeDocument, NodeChunk, NodeConcept:
		return true
	}
	return false
}

// Node is a graph vertex. Glow and Snippet are only set on retrieval graphs.
type Node struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Type    NodeType `json:"type"`
	Glow    bool     `json:"glow,omitempty"`
	Snippet string   `json:"snippet,omitempty"`
}

// Edge links two node IDs with a weight.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Touches reports whether the edge has id at either end.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// Graph is a node/edge payload. Connectivity and acyclicity are not checked.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Validate checks that every node has an ID and a known type and every edge
// has both endpoints.
func (g Graph) Validate() error {
	for i, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has no id", ErrInvalidGraph, i)
		}
		if !n.Type.Valid() {
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidGraph, n.ID, n.Type)
		}
	}
	for i, e := range g.Edges {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("%w: edge %d is missing an endpoint", ErrInvalidGraph, i)
		}
	}
	return nil
}

// UnmarshalJSON decodes and validates, so an invalid graph never leaves the API boundary.
func (g *Graph) UnmarshalJSON(data []byte) error {
	type plain Graph
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if err := Graph(p).Validate(); err != nil {
		return err
	}
	*g = Graph(p)
	return nil
}

// NodesOfType returns the nodes with type t, in payload order.
func (g Graph) NodesOfType(t NodeType) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOf returns up to limit edges touching id; limit <= 0 means all.
func (g Graph) EdgesOf(id string, limit int) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if !e.Touches(id) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// ConnectedTo reports whether an edge joins a and b in either direction.
func (g Graph) ConnectedTo(a, b string) bool {
	for _, e := range g.Edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return true
		}
	}
	return false
}
