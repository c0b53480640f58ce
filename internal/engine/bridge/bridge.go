// Package bridge keeps the 3D camera aligned with the host map camera and
// issues the draw call, once per engine draw cycle.
package bridge

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapstead/overlay3d/pkg/host"
	"github.com/mapstead/overlay3d/pkg/mat"
	"github.com/mapstead/overlay3d/pkg/scene"
)

// Bridge re-derives the 3D camera from host matrices every frame. It must
// only run after the host signaled readiness; before that no matrices
// exist.
type Bridge struct {
	engine   host.Engine
	renderer scene.Renderer
	scene    *scene.Scene
	camera   *scene.Camera
}

// New wires a bridge to its collaborators.
func New(e host.Engine, r scene.Renderer, s *scene.Scene, cam *scene.Camera) *Bridge {
	return &Bridge{engine: e, renderer: r, scene: s, camera: cam}
}

// Camera returns the camera the bridge writes into each frame.
func (b *Bridge) Camera() *scene.Camera { return b.camera }

// Render synchronizes the camera with the host and draws the scene.
//
// The host exposes no world matrix directly, only two projections: the
// off-axis one specialized for the plugin surface (pluginProj) and the
// generic one with the view transform folded in (genericProj). Removing
// the former from the latter isolates the inverse world transform.
//
// A non-invertible matrix is a host/plugin contract violation; the frame
// is aborted with an error rather than letting NaNs reach the renderer.
func (b *Bridge) Render(pluginProj, genericProj mgl32.Mat4) error {
	b.camera.SetProjection(pluginProj)

	invProj, err := mat.InverseChecked(pluginProj)
	if err != nil {
		return fmt.Errorf("plugin projection: %w", err)
	}

	worldInverse := invProj.Mul4(genericProj)
	world, err := mat.InverseChecked(worldInverse)
	if err != nil {
		return fmt.Errorf("camera world: %w", err)
	}

	if err := b.camera.SetWorldFromMatrix(world); err != nil {
		return err
	}

	// The drawing context is shared with the host's own 2D rendering, so
	// leaked state from the previous pass must be cleared first.
	b.renderer.ResetState()

	// Pixel ratio is sampled every frame; it changes when the window moves
	// between displays.
	//
	// rect.X/Y locate the surface within the host page and belong to the
	// pointer-to-NDC conversion only. The viewport is surface-local, so
	// its origin is always the surface's own (0,0).
	ratio := b.engine.PixelRatio()
	rect := b.engine.Container()
	b.renderer.SetViewport(
		0,
		0,
		int(gomath.Round(rect.Width*ratio)),
		int(gomath.Round(rect.Height*ratio)),
	)

	return b.renderer.Render(b.scene, b.camera)
}
