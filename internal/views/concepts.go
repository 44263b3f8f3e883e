package views

import (
	"context"
	"sync"

	"github.com/hyperjump/ragscope/internal/models"
	"go.uber.org/zap"
)

// ConceptGraph shows documents and the concepts linked to them. The graph is
// fetched once; filtering by document is local.
type ConceptGraph struct {
	src    GraphSource
	logger *zap.Logger

	mu     sync.RWMutex
	graph  models.Graph
	filter string
}

// NewConceptGraph returns an unloaded concept-graph view.
func NewConceptGraph(src GraphSource, logger *zap.Logger) *ConceptGraph {
	return &ConceptGraph{src: src, logger: orNop(logger)}
}

// Load fetches the graph.
func (v *ConceptGraph) Load(ctx context.Context) {
	g, err := v.src.ConceptGraph(ctx)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil || g == nil {
		if err != nil {
			degrade(v.logger, "concept graph fetch", err)
		}
		v.graph = models.Graph{}
		return
	}
	v.graph = *g
}

// Empty reports whether the graph has no nodes.
func (v *ConceptGraph) Empty() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.graph.Nodes) == 0
}

// Documents returns the document nodes.
func (v *ConceptGraph) Documents() []models.Node {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.graph.NodesOfType(models.NodeDocument)
}

// SetFilter restricts visible concepts to those linked to docID; "" clears the filter.
func (v *ConceptGraph) SetFilter(docID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = docID
}

// Filter returns the current document filter.
func (v *ConceptGraph) Filter() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

// VisibleConcepts returns the concepts passing the current filter.
func (v *ConceptGraph) VisibleConcepts() []models.Node {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return FilterConcepts(v.graph, v.filter)
}

// FilterConcepts returns the concept nodes with at least one edge to or from
// docID. An empty docID returns every concept node.
func FilterConcepts(g models.Graph, docID string) []models.Node {
	concepts := g.NodesOfType(models.NodeConcept)
	if docID == "" {
		return concepts
	}
	var out []models.Node
	for _, c := range concepts {
		if g.ConnectedTo(docID, c.ID) {
			out = append(out, c)
		}
	}
	return out
}
