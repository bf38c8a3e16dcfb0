package plan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrCycle is returned when the plan's dependencies form a cycle.
	ErrCycle = errors.New("dependency cycle")
	// ErrUnknownDependency is returned when a node depends on an undeclared node.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrDuplicateNode is returned when two nodes share an ID.
	ErrDuplicateNode = errors.New("duplicate node")
)

// RunFunc produces a node's result. deps holds the results of every node that
// completed before this one's level started.
type RunFunc func(ctx context.Context, deps *Results) (any, error)

// Node is one unit of work in the plan.
type Node struct {
	ID        string
	DependsOn []string
	Run       RunFunc
}

// Plan is a set of nodes forming a DAG.
type Plan struct {
	nodes map[string]Node
}

// New returns an empty plan.
func New() *Plan {
	return &Plan{nodes: make(map[string]Node)}
}

// Add registers a node.
func (p *Plan) Add(n Node) error {
	if n.ID == "" {
		return errors.New("node ID is required")
	}
	if n.Run == nil {
		return fmt.Errorf("node %s has no run function", n.ID)
	}
	if _, exists := p.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	p.nodes[n.ID] = n
	return nil
}

// Len returns the number of nodes.
func (p *Plan) Len() int {
	return len(p.nodes)
}

// Node returns the node with the given ID.
func (p *Plan) Node(id string) (Node, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// Order returns the nodes grouped into topological levels.
// IDs within a level are sorted so the order is deterministic.
func (p *Plan) Order() ([][]string, error) {
	indegree := make(map[string]int, len(p.nodes))
	dependents := make(map[string][]string, len(p.nodes))

	for id, n := range p.nodes {
		if _, ok := indegree[id]; !ok {
			indegree[id] = 0
		}
		for _, dep := range n.DependsOn {
			if _, ok := p.nodes[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, id, dep)
			}
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var current []string
	for id, deg := range indegree {
		if deg == 0 {
			current = append(current, id)
		}
	}

	var levels [][]string
	visited := 0
	for len(current) > 0 {
		sort.Strings(current)
		levels = append(levels, current)
		visited += len(current)

		var next []string
		for _, id := range current {
			for _, dependent := range dependents[id] {
				indegree[dependent]--
				if indegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		current = next
	}

	if visited != len(p.nodes) {
		var stuck []string
		for id, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w among: %s", ErrCycle, strings.Join(stuck, ", "))
	}

	return levels, nil
}
