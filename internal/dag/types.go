package dag

import "sync"

// Graph is a directed graph of section names. All operations on the graph
// are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
}

// node represents a single section. It is un-exported to enforce
// interaction with the graph via the public API (using string IDs).
type node struct {
	id string
	// callees holds the sections this one runs.
	callees map[string]*node
	// callers holds the sections that run this one.
	callers map[string]*node
}
