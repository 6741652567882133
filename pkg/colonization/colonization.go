// Package colonization grows branching skeletons with the space
// colonization algorithm (Runions, Lane, Prusinkiewicz 2007): attraction
// points pull their nearest skeleton node toward them until the skeleton
// reaches them.
package colonization

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCharnyshevich/worldgen/pkg/skeleton"
)

// Config holds the parameters of one tree. All distances must be positive
// and finite.
type Config struct {
	// KillDistance removes attraction points this close to any node.
	KillDistance float64
	// InfluenceRadius bounds how far an attraction point may be from its
	// nearest node and still pull it.
	InfluenceRadius float64
	// StepLength is the length of every new branch segment.
	StepLength float64
	// StartPoint is the root position. Required.
	StartPoint *mgl64.Vec3
	// AttractionPoints is copied by New.
	AttractionPoints []mgl64.Vec3
}

// Validate returns a *ConfigurationError or *EmptyInputError naming the
// first offending field.
func (c Config) Validate() error {
	if err := positive("KillDistance", c.KillDistance); err != nil {
		return err
	}
	if err := positive("InfluenceRadius", c.InfluenceRadius); err != nil {
		return err
	}
	if err := positive("StepLength", c.StepLength); err != nil {
		return err
	}
	if c.StartPoint == nil {
		return &ConfigurationError{Field: "StartPoint", Reason: "is required"}
	}
	if !finite(*c.StartPoint) {
		return &ConfigurationError{Field: "StartPoint", Reason: "must be finite"}
	}
	if len(c.AttractionPoints) == 0 {
		return &EmptyInputError{Field: "AttractionPoints"}
	}
	for i, p := range c.AttractionPoints {
		if !finite(p) {
			return &ConfigurationError{Field: fmt.Sprintf("AttractionPoints[%d]", i), Reason: "must be finite"}
		}
	}
	return nil
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return &ConfigurationError{Field: field, Reason: "must be positive and finite"}
	}
	return nil
}

// Stats summarizes one Grow round.
type Stats struct {
	Killed     int // points removed by the kill distance
	Remaining  int // points left after removal
	Attracted  int // points that pulled a node
	Ignored    int // points outside the influence radius of their nearest node
	Grown      int // nodes added
	Degenerate int // attracted nodes whose pulls cancelled out
}

// Tree is one growing skeleton and the attraction points it still has to
// reach. A Tree is not safe for concurrent use.
type Tree struct {
	killDistance    float64
	influenceRadius float64
	stepLength      float64

	skel   *skeleton.Skeleton
	points []mgl64.Vec3
	sealed bool
}

// New validates cfg and returns a tree holding only the root node.
func New(cfg Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tree{
		killDistance:    cfg.KillDistance,
		influenceRadius: cfg.InfluenceRadius,
		stepLength:      cfg.StepLength,
		skel:            skeleton.New(*cfg.StartPoint),
		points:          append([]mgl64.Vec3(nil), cfg.AttractionPoints...),
	}, nil
}

// Grow runs one iteration: prune reached points, assign each remaining
// point to its nearest node, and give every attracted node one child one
// step along the normalized sum of its pull directions. New nodes are
// appended in ascending parent order. The state is only modified after the
// whole round has been computed.
func (t *Tree) Grow() (Stats, error) {
	if t.sealed {
		return Stats{}, ErrSealed
	}
	var st Stats
	if len(t.points) == 0 {
		return st, nil
	}

	n := t.skel.Len()
	kill2 := t.killDistance * t.killDistance
	influence2 := t.influenceRadius * t.influenceRadius

	survivors := make([]mgl64.Vec3, 0, len(t.points))
	pulls := make([]mgl64.Vec3, n)
	attracted := make([]bool, n)

	for _, p := range t.points {
		// The nearest node is within the kill distance iff any node is.
		near, d2 := t.nearest(p)
		if d2 < kill2 {
			st.Killed++
			continue
		}
		survivors = append(survivors, p)
		if d2 > influence2 {
			st.Ignored++
			continue
		}
		d := math.Sqrt(d2)
		if d == 0 {
			continue
		}
		pulls[near] = pulls[near].Add(p.Sub(t.skel.Position(near)).Mul(1 / d))
		attracted[near] = true
		st.Attracted++
	}
	st.Remaining = len(survivors)

	type growth struct {
		parent int
		pos    mgl64.Vec3
	}
	var grown []growth
	for i := 0; i < n; i++ {
		if !attracted[i] {
			continue
		}
		dir, err := direction(i, pulls[i])
		if err != nil {
			st.Degenerate++
			continue
		}
		grown = append(grown, growth{parent: i, pos: t.skel.Position(i).Add(dir.Mul(t.stepLength))})
	}

	t.points = survivors
	for _, g := range grown {
		t.skel.Add(g.parent, g.pos)
	}
	st.Grown = len(grown)
	return st, nil
}

// nearest returns the lowest-index node closest to p and the squared
// distance to it.
func (t *Tree) nearest(p mgl64.Vec3) (int, float64) {
	best := 0
	bestD2 := math.Inf(1)
	for i := 0; i < t.skel.Len(); i++ {
		d := p.Sub(t.skel.Position(i))
		if d2 := d.Dot(d); d2 < bestD2 {
			best, bestD2 = i, d2
		}
	}
	return best, bestD2
}

const degenerateLength = 1e-12

func direction(node int, sum mgl64.Vec3) (mgl64.Vec3, error) {
	l := sum.Len()
	if !(l > degenerateLength) || math.IsInf(l, 0) {
		return mgl64.Vec3{}, &DegenerateGeometryError{Node: node}
	}
	return sum.Mul(1 / l), nil
}

// GrowUntil calls Grow until the attraction points run out, a round adds no
// node, or maxSteps rounds have run. It returns the number of rounds.
func (t *Tree) GrowUntil(maxSteps int) (int, error) {
	steps := 0
	for steps < maxSteps && len(t.points) > 0 {
		st, err := t.Grow()
		if err != nil {
			return steps, err
		}
		steps++
		if st.Grown == 0 {
			break
		}
	}
	return steps, nil
}

// Simplify collapses nearly straight chains (see skeleton.Simplify) and
// renumbers the nodes densely. Afterwards Grow returns ErrSealed.
func (t *Tree) Simplify(angle float64) int {
	t.sealed = true
	return t.skel.Simplify(angle)
}

// ComputeTrunkRadii sets leaf radii to leafRadius and propagates
// cbrt(Σ r³) toward the root. Call it after Simplify; radii computed before
// further growth are not updated.
func (t *Tree) ComputeTrunkRadii(leafRadius float64) {
	t.skel.ComputeRadii(leafRadius)
}

// Len returns the node count.
func (t *Tree) Len() int { return t.skel.Len() }

// Sealed reports whether Simplify has been called.
func (t *Tree) Sealed() bool { return t.sealed }

// Remaining returns the number of attraction points not yet reached.
func (t *Tree) Remaining() int { return len(t.points) }

// Nodes returns a copy of the skeleton nodes.
func (t *Tree) Nodes() []skeleton.Node { return t.skel.Nodes() }

// Segments returns the skeleton edges.
func (t *Tree) Segments() []skeleton.Segment { return t.skel.Segments() }

// Skeleton returns an independent copy of the skeleton.
func (t *Tree) Skeleton() *skeleton.Skeleton { return t.skel.Clone() }

// AttractionPoints returns a copy of the unreached attraction points.
func (t *Tree) AttractionPoints() []mgl64.Vec3 {
	return append([]mgl64.Vec3(nil), t.points...)
}
