package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// NoParent marks a root node
const NoParent = -1

// ErrMalformedHierarchy is matched by every HierarchyError
var ErrMalformedHierarchy = errors.New("scene: malformed hierarchy")

// HierarchyError reports a node table that is not a forest
type HierarchyError struct {
	Node   int
	Reason string
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("scene: node %d: %s", e.Node, e.Reason)
}

func (e *HierarchyError) Unwrap() error {
	return ErrMalformedHierarchy
}

// NodeDesc is a node as declared by a scene document: a bind transform and its children.
type NodeDesc struct {
	Name     string
	Bind     mgl64.Mat4
	Children []int
	Mesh     bool
}

// Node is an entry of the node table. Its index is its position in the table.
type Node struct {
	Name string
	// Bind is the static transform relative to the parent
	Bind   mgl64.Mat4
	Parent int
	// Mesh is set when a renderable mesh hangs on this node
	Mesh bool
}

// Graph is a validated node table: every node has at most one parent and there is no cycle.
type Graph struct {
	nodes []Node
	order []int
}

// Build links the declared children to their parents.
// The first pass creates every node as a root, the second sets the parent of each declared child.
// A child claimed twice, an out of range child and a cycle all fail with a *HierarchyError.
func Build(descs []NodeDesc) (*Graph, error) {
	nodes := make([]Node, len(descs))
	for i, desc := range descs {
		nodes[i] = Node{
			Name:   desc.Name,
			Bind:   desc.Bind,
			Parent: NoParent,
			Mesh:   desc.Mesh,
		}
	}

	for parent, desc := range descs {
		for _, child := range desc.Children {
			if child < 0 || child >= len(nodes) {
				return nil, &HierarchyError{Node: parent, Reason: fmt.Sprintf("child index %d out of range", child)}
			}
			if child == parent {
				return nil, &HierarchyError{Node: parent, Reason: "node is its own child"}
			}
			if nodes[child].Parent != NoParent {
				return nil, &HierarchyError{
					Node:   child,
					Reason: fmt.Sprintf("claimed by parents %d and %d", nodes[child].Parent, parent),
				}
			}
			nodes[child].Parent = parent
		}
	}

	return newGraph(nodes)
}

// FromParents validates a node table whose parent links are already set.
func FromParents(nodes []Node) (*Graph, error) {
	table := make([]Node, len(nodes))
	copy(table, nodes)

	for i, node := range table {
		if node.Parent == NoParent {
			continue
		}
		if node.Parent < 0 || node.Parent >= len(table) {
			return nil, &HierarchyError{Node: i, Reason: fmt.Sprintf("parent index %d out of range", node.Parent)}
		}
	}

	return newGraph(table)
}

func newGraph(nodes []Node) (*Graph, error) {
	order, err := topologicalOrder(nodes)
	if err != nil {
		return nil, err
	}

	return &Graph{nodes: nodes, order: order}, nil
}

// topologicalOrder lists roots first, then children breadth first.
// Nodes never reached from a root sit on a cycle.
func topologicalOrder(nodes []Node) ([]int, error) {
	children := make([][]int, len(nodes))
	order := make([]int, 0, len(nodes))
	for i, node := range nodes {
		if node.Parent == NoParent {
			order = append(order, i)
		} else {
			children[node.Parent] = append(children[node.Parent], i)
		}
	}

	for head := 0; head < len(order); head++ {
		order = append(order, children[order[head]]...)
	}

	if len(order) != len(nodes) {
		reached := make([]bool, len(nodes))
		for _, i := range order {
			reached[i] = true
		}
		for i := range nodes {
			if !reached[i] {
				return nil, &HierarchyError{Node: i, Reason: "parent chain forms a cycle"}
			}
		}
	}

	return order, nil
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node at index i
func (g *Graph) Node(i int) Node {
	return g.nodes[i]
}

// Parent returns the parent of node i, or NoParent
func (g *Graph) Parent(i int) int {
	return g.nodes[i].Parent
}

// Bind returns the bind transform of node i
func (g *Graph) Bind(i int) mgl64.Mat4 {
	return g.nodes[i].Bind
}

// Order returns node indices with every parent before its children.
// The slice is shared and must not be modified.
func (g *Graph) Order() []int {
	return g.order
}

// Roots returns the nodes without a parent, in table order
func (g *Graph) Roots() []int {
	var roots []int
	for i, node := range g.nodes {
		if node.Parent == NoParent {
			roots = append(roots, i)
		}
	}

	return roots
}

// Ancestors returns the parent chain of node i, nearest first.
// The walk is bounded by the node count.
func (g *Graph) Ancestors(i int) ([]int, error) {
	var chain []int
	for parent := g.nodes[i].Parent; parent != NoParent; parent = g.nodes[parent].Parent {
		if len(chain) >= len(g.nodes) {
			return nil, &HierarchyError{Node: i, Reason: "ancestor walk exceeds node count"}
		}
		chain = append(chain, parent)
	}

	return chain, nil
}
