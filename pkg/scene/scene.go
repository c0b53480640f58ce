// Package scene provides the 3D scene graph the plugin renders: a tree of
// group and mesh nodes with TRS transforms, a camera driven by host
// matrices, and ray casting against mesh bounds.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapstead/overlay3d/pkg/mat"
)

// Kind discriminates node types. Only meshes are pickable; groups exist
// for structure.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
)

// AABB is an axis-aligned bounding box in the node's local space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Node is one element of the scene graph. Mesh nodes carry local-space
// bounds used for picking; group nodes only aggregate children.
type Node struct {
	ID string

	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Visible  bool

	// Bounds is only meaningful for mesh nodes.
	Bounds AABB

	kind     Kind
	parent   *Node
	children []*Node
}

// NewGroup creates an empty group node with an identity transform.
func NewGroup(id string) *Node {
	return &Node{
		ID:       id,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Visible:  true,
		kind:     KindGroup,
	}
}

// NewMesh creates a mesh node with the given local bounds.
func NewMesh(id string, bounds AABB) *Node {
	n := NewGroup(id)
	n.kind = KindMesh
	n.Bounds = bounds
	return n
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Parent returns the parent node, or nil for a detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child slice. Callers must not mutate it.
func (n *Node) Children() []*Node { return n.children }

// Add attaches child to n, detaching it from any previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. Removing a node that is not a child is a
// no-op.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Child returns the direct child with the given ID, or nil.
func (n *Node) Child(id string) *Node {
	for _, c := range n.children {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// LocalMatrix returns the node's TRS matrix.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	return mat.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix returns the node's transform composed with all ancestors.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// Traverse visits n and its descendants pre-order. Returning false from fn
// skips the node's subtree.
func (n *Node) Traverse(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// AmbientLight is the single light source the plugin sets up.
type AmbientLight struct {
	Color     [3]float32
	Intensity float32
}

// Scene holds the node tree and scene-wide lighting.
type Scene struct {
	Ambient AmbientLight

	root *Node
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		Ambient: AmbientLight{Color: [3]float32{1, 1, 1}, Intensity: 1},
		root:    NewGroup(""),
	}
}

// Root returns the root group.
func (s *Scene) Root() *Node { return s.root }

// Add attaches a node directly under the root.
func (s *Scene) Add(n *Node) { s.root.Add(n) }

// Remove detaches a node from wherever it hangs in the tree. Absent nodes
// are a no-op.
func (s *Scene) Remove(n *Node) {
	if n == nil || n.parent == nil {
		return
	}
	if s.Contains(n) {
		n.parent.Remove(n)
	}
}

// Contains reports whether n is attached to this scene.
func (s *Scene) Contains(n *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == s.root {
			return true
		}
	}
	return false
}

// Renderer is the external rendering engine. The plugin drives it but does
// not own a GPU context; the host's drawing surface is shared, hence
// ResetState before every frame.
type Renderer interface {
	ResetState()
	SetViewport(x, y, width, height int)
	Render(s *Scene, cam *Camera) error
}
