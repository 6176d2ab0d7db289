/*
Package graph models a segment graph as a directed graph over oriented
segment names, and provides the component analysis used to pick the
canonical forward walk through it.

Every link in the underlying graph contributes two directed edges: the edge
as stated, and its companion with both endpoint orientations flipped, so
that a walk and its reverse-complement traversal are both represented.
*/
package graph

import (
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var ErrUnsupportedOrientation = errors.New("unsupported orientation")

// A Node is an oriented segment name: the segment's name prefixed with ">"
// for a forward traversal or "<" for a reverse-complement traversal. The two
// orientations of one segment are distinct nodes.
type Node string

// Forward returns the forward-oriented node for a segment name.
func Forward(name string) Node { return Node(">" + name) }

// Reverse returns the reverse-oriented node for a segment name.
func Reverse(name string) Node { return Node("<" + name) }

// FromSign builds a node from a segment name and a GFA orientation sign,
// "+" for forward and "-" for reverse.
func FromSign(name, sign string) (Node, error) {
	switch sign {
	case "+":
		return Forward(name), nil
	case "-":
		return Reverse(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOrientation, sign)
}

// IsReverse reports whether the node is a reverse-complement traversal.
func (n Node) IsReverse() bool {
	return len(n) > 0 && n[0] == '<'
}

// Base returns the segment name without its direction marker.
func (n Node) Base() string {
	if len(n) > 0 && (n[0] == '>' || n[0] == '<') {
		return string(n[1:])
	}
	return string(n)
}

// Flip returns the node for the opposite orientation of the same segment.
func (n Node) Flip() Node {
	if n.IsReverse() {
		return Forward(n.Base())
	}
	return Reverse(n.Base())
}

// A Link is one raw segment-to-segment link, with GFA orientation signs.
type Link struct {
	FromName string
	FromSign string
	ToName   string
	ToSign   string
}

// A DiGraph is a directed graph over oriented segment names.
type DiGraph struct {
	succ map[Node]map[Node]bool
	pred map[Node]map[Node]bool
}

func NewDiGraph() *DiGraph {
	return &DiGraph{
		succ: make(map[Node]map[Node]bool),
		pred: make(map[Node]map[Node]bool),
	}
}

// AddNode adds a node with no edges. Adding an existing node is a no-op.
func (g *DiGraph) AddNode(n Node) {
	if _, ok := g.succ[n]; !ok {
		g.succ[n] = make(map[Node]bool)
		g.pred[n] = make(map[Node]bool)
	}
}

// AddEdge adds a directed edge, adding its endpoints as needed.
func (g *DiGraph) AddEdge(u, v Node) {
	g.AddNode(u)
	g.AddNode(v)
	g.succ[u][v] = true
	g.pred[v][u] = true
}

// HasEdge reports whether the directed edge u -> v is present.
func (g *DiGraph) HasEdge(u, v Node) bool {
	return g.succ[u][v]
}

// Nodes returns all nodes in sorted order.
func (g *DiGraph) Nodes() []Node {
	nodes := maps.Keys(g.succ)
	slices.Sort(nodes)
	return nodes
}

func (g *DiGraph) NumNodes() int { return len(g.succ) }

func (g *DiGraph) InDegree(n Node) int  { return len(g.pred[n]) }
func (g *DiGraph) OutDegree(n Node) int { return len(g.succ[n]) }

// Build constructs the oriented graph from a set of links. Each link yields
// the directed edge it states plus the companion edge with both endpoint
// orientations flipped, keeping the edge set closed under orientation
// reversal. Unrecognised orientation signs fail with
// ErrUnsupportedOrientation.
func Build(links []Link) (*DiGraph, error) {
	g := NewDiGraph()
	for _, l := range links {
		u, err := FromSign(l.FromName, l.FromSign)
		if err != nil {
			return nil, err
		}
		v, err := FromSign(l.ToName, l.ToSign)
		if err != nil {
			return nil, err
		}
		g.AddEdge(u, v)
		g.AddEdge(u.Flip(), v.Flip())
	}
	return g, nil
}

// WeaklyConnectedComponents partitions the nodes into weakly connected
// components: maximal node sets mutually reachable ignoring edge direction.
// The result is materialised so it can be consumed more than once, and its
// order is deterministic (components are discovered in sorted node order).
func (g *DiGraph) WeaklyConnectedComponents() []map[Node]bool {
	seen := make(map[Node]bool, len(g.succ))
	var wccs []map[Node]bool
	for _, n := range g.Nodes() {
		if seen[n] {
			continue
		}
		comp := make(map[Node]bool)
		stack := []Node{n}
		seen[n] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp[cur] = true
			for nb := range g.succ[cur] {
				if !seen[nb] {
					seen[nb] = true
					stack = append(stack, nb)
				}
			}
			for nb := range g.pred[cur] {
				if !seen[nb] {
					seen[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		wccs = append(wccs, comp)
	}
	return wccs
}

// Endpoints are the boundary nodes of each weakly connected component.
//
// Sources and Sinks are named by their graph-theoretic meaning: a source has
// in-degree zero and out-degree non-zero within its component, a sink the
// opposite. Note that the upstream pipeline this tool derives from uses the
// inverted vocabulary (its "sources" are the Sinks here, and vice versa);
// the behaviour is identical, only the field names differ.
type Endpoints struct {
	Sources []Node
	Sinks   []Node
}

// Endpoints computes the per-component boundary nodes, using the induced
// subgraph of each component. Pass the materialised component list from
// WeaklyConnectedComponents.
func (g *DiGraph) Endpoints(wccs []map[Node]bool) Endpoints {
	var ep Endpoints
	for _, wcc := range wccs {
		nodes := maps.Keys(wcc)
		slices.Sort(nodes)
		for _, n := range nodes {
			var in, out int
			for nb := range g.pred[n] {
				if wcc[nb] {
					in++
				}
			}
			for nb := range g.succ[n] {
				if wcc[nb] {
					out++
				}
			}
			switch {
			case in == 0 && out != 0:
				ep.Sources = append(ep.Sources, n)
			case in != 0 && out == 0:
				ep.Sinks = append(ep.Sinks, n)
			}
		}
	}
	return ep
}

// ForwardSegments returns the node set of the component with the most
// forward-oriented nodes, sorted. Ties keep the first maximiser in component
// order. An empty component list yields nil.
func ForwardSegments(wccs []map[Node]bool) []Node {
	var best map[Node]bool
	bestCount := -1
	for _, wcc := range wccs {
		count := 0
		for n := range wcc {
			if !n.IsReverse() {
				count++
			}
		}
		if count > bestCount {
			best = wcc
			bestCount = count
		}
	}
	if best == nil {
		return nil
	}
	nodes := maps.Keys(best)
	slices.Sort(nodes)
	return nodes
}
