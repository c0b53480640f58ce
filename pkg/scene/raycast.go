package scene

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapstead/overlay3d/pkg/mat"
)

// Ray is a world-space ray with a normalized direction.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// RayFromNDC casts a ray from the camera through a point in normalized
// device coordinates. ndcX and ndcY are in [-1, 1].
func RayFromNDC(cam *Camera, ndcX, ndcY float32) (Ray, error) {
	vp, err := cam.ViewProjection()
	if err != nil {
		return Ray{}, err
	}
	invVP, err := mat.InverseChecked(vp)
	if err != nil {
		return Ray{}, fmt.Errorf("view-projection: %w", err)
	}

	near := unproject(invVP, mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invVP, mgl32.Vec4{ndcX, ndcY, 1, 1})

	dir := far.Sub(near)
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}

	return Ray{Origin: near, Dir: dir}, nil
}

func unproject(invVP mgl32.Mat4, ndc mgl32.Vec4) mgl32.Vec3 {
	w := invVP.Mul4x1(ndc)
	if w.W() != 0 {
		return mgl32.Vec3{w.X() / w.W(), w.Y() / w.W(), w.Z() / w.W()}
	}
	return w.Vec3()
}

// IntersectAABB tests the ray against a box using the slab method. It
// returns the entry distance, or the exit distance when the origin is
// inside the box.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if r.Dir[axis] != 0 {
			t1 := (box.Min[axis] - r.Origin[axis]) / r.Dir[axis]
			t2 := (box.Max[axis] - r.Origin[axis]) / r.Dir[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// WorldBounds transforms the node's local bounds into world space by
// running all eight corners through the world matrix.
func (n *Node) WorldBounds() AABB {
	m := n.WorldMatrix()

	first := true
	var out AABB
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{n.Bounds.Min.X(), n.Bounds.Min.Y(), n.Bounds.Min.Z()}
		if i&1 != 0 {
			corner[0] = n.Bounds.Max.X()
		}
		if i&2 != 0 {
			corner[1] = n.Bounds.Max.Y()
		}
		if i&4 != 0 {
			corner[2] = n.Bounds.Max.Z()
		}

		w4 := m.Mul4x1(corner.Vec4(1))
		w := w4.Vec3()
		if w4.W() != 0 && w4.W() != 1 {
			w = w.Mul(1 / w4.W())
		}

		if first {
			out.Min, out.Max = w, w
			first = false
			continue
		}
		for axis := 0; axis < 3; axis++ {
			if w[axis] < out.Min[axis] {
				out.Min[axis] = w[axis]
			}
			if w[axis] > out.Max[axis] {
				out.Max[axis] = w[axis]
			}
		}
	}
	return out
}

// Pick returns the nearest visible mesh intersected by the ray. Groups and
// other non-mesh nodes never register as hits; an invisible node hides its
// whole subtree.
func (s *Scene) Pick(ray Ray) (node *Node, dist float32, ok bool) {
	best := float32(gomath.MaxFloat32)

	s.root.Traverse(func(n *Node) bool {
		if n != s.root && !n.Visible {
			return false
		}
		if n.Kind() != KindMesh {
			return true
		}
		if t, hit := ray.IntersectAABB(n.WorldBounds()); hit && t < best {
			best = t
			node = n
		}
		return true
	})

	if node == nil {
		return nil, 0, false
	}
	return node, best, true
}
