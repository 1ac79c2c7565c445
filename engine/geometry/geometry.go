/*
Package geometry holds positioned, renderer-agnostic text geometry.

Layout produces a tree of nodes. Every node has a local transform
(position, rotation quaternion, scale) relative to its parent, an
unresolved color reference and a list of primitives. Primitives are either
line strips (stroke font glyphs, decorations) or indexed triangle lists
(outline font glyphs). Vertex positions are stored as flat float32 xyz
triples, which is the layout a renderer or a transfer buffer wants.

The tree is strictly hierarchical: nodes own their children and never
refer to their parents.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package geometry

import (
	"fmt"
	"math"

	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mtext.geometry'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.geometry")
}

// Vec3 is a point or a vector in 3D space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v+w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Quat is a rotation quaternion.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// NoRotation is the identity quaternion.
var NoRotation = Quat{W: 1}

// RotationZ returns a rotation around the z axis by theta radians.
func RotationZ(theta float64) Quat {
	s, c := math.Sincos(theta / 2)
	return Quat{Z: s, W: c}
}

// Rotate rotates a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2w(u×v) + 2u×(u×v), with u the vector part of q
	u := Vec3{q.X, q.Y, q.Z}
	t := cross(u, v)
	t = Vec3{2 * t.X, 2 * t.Y, 2 * t.Z}
	ut := cross(u, t)
	return Vec3{v.X + q.W*t.X + ut.X, v.Y + q.W*t.Y + ut.Y, v.Z + q.W*t.Z + ut.Z}
}

func cross(a, b Vec3) Vec3 {
	return Vec3{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

// Transform is a local transformation: scale first, then rotation, then
// translation.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Quat `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Rotation: NoRotation, Scale: Vec3{1, 1, 1}}
}

// Translation returns a pure translation.
func Translation(x, y float64) Transform {
	t := Identity()
	t.Position = Vec3{X: x, Y: y}
	return t
}

// Apply transforms a point.
func (t Transform) Apply(v Vec3) Vec3 {
	v = Vec3{v.X * t.Scale.X, v.Y * t.Scale.Y, v.Z * t.Scale.Z}
	return t.Rotation.Rotate(v).Add(t.Position)
}

// Kind is the kind of a primitive.
type Kind int

// Primitive kinds. Lines are line strips: consecutive vertices are
// connected. Triangles are indexed triangle lists.
const (
	Lines Kind = iota
	Triangles
)

func (k Kind) String() string {
	if k == Triangles {
		return "triangles"
	}
	return "lines"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "lines":
		return Lines, true
	case "triangles":
		return Triangles, true
	}
	return Lines, false
}

// Primitive is a drawable shape.
type Primitive struct {
	Kind     Kind
	Vertices []float32 // x, y, z triples
	Indices  []uint32  // triangle corners, nil for Lines
	Color    color.RGB
}

// VertexCount returns the number of vertices.
func (p *Primitive) VertexCount() int {
	return len(p.Vertices) / 3
}

// Vertex returns vertex i.
func (p *Primitive) Vertex(i int) Vec3 {
	return Vec3{float64(p.Vertices[3*i]), float64(p.Vertices[3*i+1]), float64(p.Vertices[3*i+2])}
}

// Box returns the extent of the primitive's vertices.
func (p *Primitive) Box() Box {
	b := EmptyBox()
	for i := 0; i < p.VertexCount(); i++ {
		b = b.Extend(p.Vertex(i))
	}
	return b
}

func (p *Primitive) String() string {
	return fmt.Sprintf("%s[%d vertices, %d indices, %s]", p.Kind, p.VertexCount(), len(p.Indices), p.Color)
}

// Role tells what a node stands for.
type Role int

// Node roles.
const (
	RoleText Role = iota // root of a text block
	RoleLine
	RoleRun
	RoleGlyph
	RoleStack
)

var roleNames = []string{"text", "line", "run", "glyph", "stack"}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, bool) {
	for i, name := range roleNames {
		if name == s {
			return Role(i), true
		}
	}
	return RoleText, false
}

// Node is a node of a geometry tree.
type Node struct {
	Role       Role
	Text       string // characters covered, informational
	Transform  Transform
	Color      color.Ref
	Primitives []Primitive
	Children   []*Node
}

// NewNode creates a node with an identity transform.
func NewNode(role Role) *Node {
	return &Node{Role: role, Transform: Identity()}
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	for _, ch := range children {
		if ch != nil {
			n.Children = append(n.Children, ch)
		}
	}
	return n
}

// Bounds returns the extent of the node's primitives and children in the
// coordinate system of the node's parent.
func (n *Node) Bounds() Box {
	b := EmptyBox()
	for i := range n.Primitives {
		b = b.Union(n.Primitives[i].Box())
	}
	for _, ch := range n.Children {
		b = b.Union(ch.Bounds())
	}
	return b.Transformed(n.Transform)
}

// Walk calls f for n and all of its descendants, depth first. Walk stops
// descending below a node if f returns false.
func (n *Node) Walk(f func(node *Node, depth int) bool) {
	n.walk(f, 0)
}

func (n *Node) walk(f func(*Node, int) bool, depth int) {
	if !f(n, depth) {
		return
	}
	for _, ch := range n.Children {
		ch.walk(f, depth+1)
	}
}

// Find collects all nodes with a given role.
func (n *Node) Find(role Role) []*Node {
	var found []*Node
	n.Walk(func(node *Node, _ int) bool {
		if node.Role == role {
			found = append(found, node)
		}
		return true
	})
	return found
}

// Result is the geometry of a text block.
type Result struct {
	Root *Node
	Box  Box // in root coordinates
}

// EmptyResult is the result for an empty text block.
func EmptyResult() *Result {
	return &Result{Root: NewNode(RoleText), Box: EmptyBox()}
}
