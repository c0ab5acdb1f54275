package brackets

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

var ErrBrokenLinkage = errors.New("broken match linkage")

// LinkageGraph is the directed graph of winner flow between matches:
// an edge A -> B means the winner of A plays in B.
type LinkageGraph struct {
	g     graph.Graph[string, string]
	final string
}

// NewLinkageGraph checks that nextMatchId and previousMatches agree, that no match
// feeds a cycle and that exactly one match has nowhere to go.
func NewLinkageGraph(matches []*models.Match) (*LinkageGraph, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	byID := make(models.MatchArena, len(matches))
	for _, m := range matches {
		if err := g.AddVertex(m.ID); err != nil {
			return nil, fmt.Errorf("%w: match %q: %v", ErrBrokenLinkage, m.ID, err)
		}
		byID[m.ID] = m
	}

	for _, m := range matches {
		if m.NextMatchID == "" {
			continue
		}
		next, ok := byID[m.NextMatchID]
		if !ok {
			return nil, fmt.Errorf("%w: match %q points to unknown match %q", ErrBrokenLinkage, m.ID, m.NextMatchID)
		}
		if !slices.Contains(next.PreviousMatches, m.ID) {
			return nil, fmt.Errorf("%w: match %q is not listed as a source of %q", ErrBrokenLinkage, m.ID, next.ID)
		}
		if err := g.AddEdge(m.ID, next.ID); err != nil {
			return nil, fmt.Errorf("%w: %q -> %q: %v", ErrBrokenLinkage, m.ID, next.ID, err)
		}
	}

	for _, m := range matches {
		for _, prev := range m.PreviousMatches {
			source, ok := byID[prev]
			if !ok || source.NextMatchID != m.ID {
				return nil, fmt.Errorf("%w: %q lists %q as a source but it does not feed it", ErrBrokenLinkage, m.ID, prev)
			}
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	lg := &LinkageGraph{g: g}
	for id, out := range adjacency {
		if len(out) > 0 {
			continue
		}
		if lg.final != "" {
			return nil, fmt.Errorf("%w: both %q and %q are terminal", ErrBrokenLinkage, lg.final, id)
		}
		lg.final = id
	}
	return lg, nil
}

// Final is the id of the match whose winner takes the bracket ("" for an empty bracket).
func (lg *LinkageGraph) Final() string {
	return lg.final
}

// Depth returns every match keyed by its distance from the final (final = 0).
func (lg *LinkageGraph) Depth() (map[string]int, error) {
	depth := make(map[string]int)
	if lg.final == "" {
		return depth, nil
	}
	predecessors, err := lg.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	depth[lg.final] = 0
	queue := []string{lg.final}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for prev := range predecessors[id] {
			if _, seen := depth[prev]; seen {
				continue
			}
			depth[prev] = depth[id] + 1
			queue = append(queue, prev)
		}
	}
	return depth, nil
}
