package dag

import (
	"fmt"
	"slices"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.addNode(id)
}

func (g *Graph) addNode(id string) *node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node{
		id:      id,
		callees: make(map[string]*node),
		callers: make(map[string]*node),
	}
	g.nodes[id] = n
	return n
}

// AddEdge records that fromID runs toID. Self edges are allowed: a section
// that runs itself is a cycle of length one. An error is returned if either
// node does not exist.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	fromNode.callees[toID] = toNode
	toNode.callers[fromID] = fromNode
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Callees returns the sorted IDs of the nodes the given node runs.
func (g *Graph) Callees(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.callees), nil
}

// Callers returns the sorted IDs of the nodes that run the given node.
func (g *Graph) Callers(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.callers), nil
}

func sortedKeys(m map[string]*node) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// CycleError reports a cycle as the path that closes it: the first and last
// IDs are the same.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected involving node '%s': %s", e.Path[0], strings.Join(e.Path, " -> "))
}

// DetectCycles checks the graph for cycles and returns a *CycleError for
// the first one found. Nodes are visited in ID order so the report is
// stable.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search with a temporary set for the current
	// path and a permanent set for nodes known to be cycle free.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var path []string

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			start := slices.Index(path, n.id)
			cycle := append(slices.Clone(path[start:]), n.id)
			return &CycleError{Path: cycle}
		}

		temporary[n.id] = true
		path = append(path, n.id)
		for _, id := range sortedKeys(n.callees) {
			if err := visit(n.callees[id]); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}
