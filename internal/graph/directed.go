// SPDX-License-Identifier: MPL-2.0

// Package graph provides the small string-keyed graphs used while importing models:
// a directed graph with topological ordering and cycle detection for kinematic trees,
// and an undirected graph with self-loops for collision filter group relations.
package graph

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the nodes left with incoming edges once every acyclic node was
		// removed. It identifies the cycle without listing it in traversal order.
		Cycle []string
	}

	// Directed is a directed graph keyed by node name. An edge from A to B means
	// A is the parent of B.
	Directed struct {
		adjacency map[string][]string
		nodes     []string
		nodeSet   map[string]bool
		inDegree  map[string]int
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// NewDirected creates an empty directed graph.
func NewDirected() *Directed {
	return &Directed{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
		inDegree:  make(map[string]int),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Directed) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to. Both nodes are added if missing.
func (g *Directed) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
	g.inDegree[to]++
}

// InDegree returns the number of edges ending at name.
func (g *Directed) InDegree(name string) int {
	return g.inDegree[name]
}

// Len returns the number of nodes.
func (g *Directed) Len() int {
	return len(g.nodes)
}

// TopologicalSort returns the nodes in parent-before-child order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle. Nodes at the same level appear in
// the order they were first added.
func (g *Directed) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = g.inDegree[node]
	}

	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycleNodes []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}
