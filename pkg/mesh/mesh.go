// Package mesh holds renderer-neutral triangle geometry buffers.
package mesh

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle list. Positions, UVs and Normals are parallel
// per-vertex arrays; every three Indices form one triangle.
type Mesh struct {
	Name      string
	Positions []mgl64.Vec3
	UVs       []mgl64.Vec2
	Indices   []uint32
	Normals   []mgl64.Vec3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Validate checks that the per-vertex arrays line up and that every index
// references an existing vertex.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	if m.UVs != nil && len(m.UVs) != n {
		return fmt.Errorf("mesh %q: %d uvs for %d positions", m.Name, len(m.UVs), n)
	}
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("mesh %q: %d normals for %d positions", m.Name, len(m.Normals), n)
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("mesh %q: index %d at %d out of range [0,%d)", m.Name, idx, i, n)
		}
	}
	return nil
}

// ComputeNormals returns smooth per-vertex normals: the unit normals of all
// triangles sharing a vertex are summed and the sum normalized. Triangles
// with zero area are skipped, and a vertex touched only by such triangles
// keeps a zero normal. Counter-clockwise triangles face their normal.
func ComputeNormals(positions []mgl64.Vec3, indices []uint32) []mgl64.Vec3 {
	normals := make([]mgl64.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		face := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		l := face.Len()
		if l == 0 {
			continue
		}
		face = face.Mul(1 / l)
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}
	for i, n := range normals {
		if l := n.Len(); l > 0 {
			normals[i] = n.Mul(1 / l)
		}
	}
	return normals
}

// WriteOBJ encodes the mesh as Wavefront OBJ. OBJ indices are 1-based.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %g %g %g\n", p.X(), p.Y(), p.Z())
	}
	hasUV := len(m.UVs) == len(m.Positions) && len(m.UVs) > 0
	hasNormal := len(m.Normals) == len(m.Positions) && len(m.Normals) > 0
	for _, uv := range m.UVs {
		if !hasUV {
			break
		}
		fmt.Fprintf(bw, "vt %g %g\n", uv.X(), uv.Y())
	}
	for _, n := range m.Normals {
		if !hasNormal {
			break
		}
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X(), n.Y(), n.Z())
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		bw.WriteString("f")
		for _, idx := range m.Indices[i : i+3] {
			v := idx + 1
			switch {
			case hasUV && hasNormal:
				fmt.Fprintf(bw, " %d/%d/%d", v, v, v)
			case hasUV:
				fmt.Fprintf(bw, " %d/%d", v, v)
			case hasNormal:
				fmt.Fprintf(bw, " %d//%d", v, v)
			default:
				fmt.Fprintf(bw, " %d", v)
			}
		}
		bw.WriteString("\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write obj: %w", err)
	}
	return nil
}
