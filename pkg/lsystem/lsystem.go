// Package lsystem expands bracketed L-system grammars and draws them with a
// 3D turtle into a skeleton.
package lsystem

import (
	"errors"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCharnyshevich/worldgen/pkg/skeleton"
)

// DefaultAngle is the turn used by a Turtle with no Angle set.
const DefaultAngle = math.Pi / 9

// MaxSymbols caps the length of an expanded program.
const MaxSymbols = 1 << 20

// ErrTooLong is returned when an expansion exceeds MaxSymbols.
var ErrTooLong = errors.New("lsystem: expansion exceeds symbol limit")

// System is a deterministic context-free L-system.
type System struct {
	Axiom string
	Rules map[rune]string
}

// Expand rewrites the axiom iterations times. Symbols without a rule are
// copied unchanged.
func (s System) Expand(iterations int) (string, error) {
	cur := s.Axiom
	for i := 0; i < iterations; i++ {
		var b strings.Builder
		for _, r := range cur {
			if rep, ok := s.Rules[r]; ok {
				b.WriteString(rep)
			} else {
				b.WriteRune(r)
			}
			if b.Len() > MaxSymbols {
				return "", ErrTooLong
			}
		}
		cur = b.String()
	}
	return cur, nil
}

// Local turtle axes. The turtle starts heading up the world Y axis.
var (
	heading = mgl64.Vec3{0, 1, 0}
	left    = mgl64.Vec3{1, 0, 0}
	up      = mgl64.Vec3{0, 0, 1}
)

// Turtle interprets programs:
//
//	F      move forward one step and add a node
//	f      move forward without adding a node
//	+ -    yaw left / right
//	& ^    pitch down / up
//	\ /    roll left / right
//	|      turn around
//	[ ]    push / pop position, orientation and step
//
// Other symbols are ignored, as is a ']' with nothing pushed.
type Turtle struct {
	Origin mgl64.Vec3
	Step   float64
	// Angle defaults to DefaultAngle when zero.
	Angle float64
	// LengthScale multiplies the step on every '['. Zero means 1.
	LengthScale float64
}

type state struct {
	pos  mgl64.Vec3
	rot  mgl64.Quat
	step float64
	node int
}

// Interpret draws program into a new skeleton rooted at Origin. After an
// 'f' the next drawn node still hangs off the last drawn one.
func (t Turtle) Interpret(program string) *skeleton.Skeleton {
	angle := t.Angle
	if angle == 0 {
		angle = DefaultAngle
	}
	scale := t.LengthScale
	if scale == 0 {
		scale = 1
	}

	s := skeleton.New(t.Origin)
	cur := state{pos: t.Origin, rot: mgl64.QuatIdent(), step: t.Step}
	var stack []state

	turn := func(a float64, axis mgl64.Vec3) {
		cur.rot = cur.rot.Mul(mgl64.QuatRotate(a, axis)).Normalize()
	}

	for _, r := range program {
		switch r {
		case 'F':
			cur.pos = cur.pos.Add(cur.rot.Rotate(heading).Mul(cur.step))
			cur.node = s.Add(cur.node, cur.pos)
		case 'f':
			cur.pos = cur.pos.Add(cur.rot.Rotate(heading).Mul(cur.step))
		case '+':
			turn(angle, up)
		case '-':
			turn(-angle, up)
		case '&':
			turn(angle, left)
		case '^':
			turn(-angle, left)
		case '\\':
			turn(angle, heading)
		case '/':
			turn(-angle, heading)
		case '|':
			turn(math.Pi, up)
		case '[':
			stack = append(stack, cur)
			cur.step *= scale
		case ']':
			if len(stack) == 0 {
				continue
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return s
}
