// Package skeleton stores branching structures as a dense arena of nodes
// linked parent to child.
package skeleton

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultSimplifyAngle is used by Simplify when no positive angle is given.
const DefaultSimplifyAngle = math.Pi / 16

// Up is the rest axis of a branch segment.
var Up = mgl64.Vec3{0, 1, 0}

// Node is one skeleton vertex. Children are indices into the owning arena.
type Node struct {
	Position mgl64.Vec3 `json:"position"`
	Children []int      `json:"children,omitempty"`
	Radius   float64    `json:"radius"`
}

// Skeleton is a rooted tree. Node 0 is the root, and every node added
// through Add has a larger index than its parent.
type Skeleton struct {
	nodes []Node
}

// New creates a skeleton holding only the root.
func New(root mgl64.Vec3) *Skeleton {
	return &Skeleton{nodes: []Node{{Position: root}}}
}

// Add appends a child of parent at pos and returns its index.
func (s *Skeleton) Add(parent int, pos mgl64.Vec3) int {
	if parent < 0 || parent >= len(s.nodes) {
		panic(fmt.Sprintf("skeleton: parent %d out of range [0,%d)", parent, len(s.nodes)))
	}
	idx := len(s.nodes)
	s.nodes = append(s.nodes, Node{Position: pos})
	s.nodes[parent].Children = append(s.nodes[parent].Children, idx)
	return idx
}

// Len returns the node count.
func (s *Skeleton) Len() int { return len(s.nodes) }

// Position returns the position of node i.
func (s *Skeleton) Position(i int) mgl64.Vec3 { return s.nodes[i].Position }

// Node returns a copy of node i.
func (s *Skeleton) Node(i int) Node {
	n := s.nodes[i]
	n.Children = append([]int(nil), n.Children...)
	return n
}

// Nodes returns a deep copy of the arena.
func (s *Skeleton) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i := range s.nodes {
		out[i] = s.Node(i)
	}
	return out
}

// Clone returns an independent copy.
func (s *Skeleton) Clone() *Skeleton {
	return &Skeleton{nodes: s.Nodes()}
}

// Validate checks the tree invariant: the root has no parent, every other
// node has exactly one, and all nodes are reachable from the root.
func (s *Skeleton) Validate() error {
	n := len(s.nodes)
	if n == 0 {
		return fmt.Errorf("skeleton: no root")
	}
	parents := make([]int, n)
	for i, node := range s.nodes {
		for _, c := range node.Children {
			if c < 0 || c >= n {
				return fmt.Errorf("skeleton: node %d has child %d out of range", i, c)
			}
			if c == i {
				return fmt.Errorf("skeleton: node %d is its own child", i)
			}
			parents[c]++
		}
	}
	if parents[0] != 0 {
		return fmt.Errorf("skeleton: root has %d parents", parents[0])
	}
	for i := 1; i < n; i++ {
		if parents[i] != 1 {
			return fmt.Errorf("skeleton: node %d has %d parents", i, parents[i])
		}
	}
	seen := make([]bool, n)
	stack := []int{0}
	reached := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			return fmt.Errorf("skeleton: cycle through node %d", i)
		}
		seen[i] = true
		reached++
		stack = append(stack, s.nodes[i].Children...)
	}
	if reached != n {
		return fmt.Errorf("skeleton: %d of %d nodes unreachable from root", n-reached, n)
	}
	return nil
}

// Simplify removes interior nodes of nearly straight single-child chains.
// For a node whose only child itself has exactly one child, the child is
// dropped when the angle between node→child and node→grandchild is below
// angle. Passes repeat until nothing changes, then the arena is compacted
// once so indices stay dense and ordered. It returns the number of removed
// nodes.
func (s *Skeleton) Simplify(angle float64) int {
	if !(angle > 0) {
		angle = DefaultSimplifyAngle
	}
	cosLimit := math.Cos(angle)

	n := len(s.nodes)
	children := make([][]int, n)
	for i, node := range s.nodes {
		children[i] = node.Children
	}
	removed := make([]bool, n)

	total := 0
	for {
		collapsed := 0
		stack := []int{0}
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for len(children[i]) == 1 {
				c := children[i][0]
				if len(children[c]) != 1 {
					break
				}
				g := children[c][0]
				if !nearlyCollinear(s.nodes[i].Position, s.nodes[c].Position, s.nodes[g].Position, cosLimit) {
					break
				}
				children[i] = []int{g}
				children[c] = nil
				removed[c] = true
				collapsed++
			}
			stack = append(stack, children[i]...)
		}
		total += collapsed
		if collapsed == 0 {
			break
		}
	}
	if total == 0 {
		return 0
	}

	remap := make([]int, n)
	next := 0
	for old := range s.nodes {
		if removed[old] {
			remap[old] = -1
			continue
		}
		remap[old] = next
		next++
	}
	compacted := make([]Node, 0, next)
	for old, node := range s.nodes {
		if removed[old] {
			continue
		}
		kids := make([]int, 0, len(children[old]))
		for _, c := range children[old] {
			kids = append(kids, remap[c])
		}
		if len(kids) == 0 {
			kids = nil
		}
		compacted = append(compacted, Node{Position: node.Position, Children: kids, Radius: node.Radius})
	}
	s.nodes = compacted
	return total
}

// nearlyCollinear reports whether the angle at a between a→b and a→c is
// below the limit. A zero-length leg adds no shape and counts as collinear.
func nearlyCollinear(a, b, c mgl64.Vec3, cosLimit float64) bool {
	d1 := b.Sub(a)
	d2 := c.Sub(a)
	l1, l2 := d1.Len(), d2.Len()
	if l1 == 0 || l2 == 0 {
		return true
	}
	return d1.Dot(d2)/(l1*l2) > cosLimit
}

// ComputeRadii assigns leafRadius to every leaf and cbrt(Σ r_child³) to
// every internal node.
func (s *Skeleton) ComputeRadii(leafRadius float64) {
	// Children always sit at higher indices, so a reverse scan is post-order.
	for i := len(s.nodes) - 1; i >= 0; i-- {
		node := &s.nodes[i]
		if len(node.Children) == 0 {
			node.Radius = leafRadius
			continue
		}
		var volume float64
		for _, c := range node.Children {
			r := s.nodes[c].Radius
			volume += r * r * r
		}
		node.Radius = math.Cbrt(volume)
	}
}

// Segment is one parent→child edge ready for cylinder extrusion.
type Segment struct {
	Parent   int        `json:"parent"`
	Child    int        `json:"child"`
	Start    mgl64.Vec3 `json:"start"`
	End      mgl64.Vec3 `json:"end"`
	Center   mgl64.Vec3 `json:"center"`
	Length   float64    `json:"length"`
	Radius   float64    `json:"radius"`
	Rotation mgl64.Quat `json:"rotation"`
}

// Segments lists every edge in parent order. Radius is the child's radius;
// Rotation turns Up onto the edge direction.
func (s *Skeleton) Segments() []Segment {
	segments := make([]Segment, 0, max(len(s.nodes)-1, 0))
	for i, node := range s.nodes {
		for _, c := range node.Children {
			start := node.Position
			end := s.nodes[c].Position
			d := end.Sub(start)
			length := d.Len()
			rot := mgl64.QuatIdent()
			if length > 0 {
				rot = mgl64.QuatBetweenVectors(Up, d.Mul(1/length))
			}
			segments = append(segments, Segment{
				Parent:   i,
				Child:    c,
				Start:    start,
				End:      end,
				Center:   start.Add(end).Mul(0.5),
				Length:   length,
				Radius:   s.nodes[c].Radius,
				Rotation: rot,
			})
		}
	}
	return segments
}
