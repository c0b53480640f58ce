// Package loader fetches and decodes model assets and coordinates batch
// loads. It fills the registry; attaching models to the scene graph is the
// caller's job, which is where the reveal strategy lives.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paulmach/orb"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mapstead/overlay3d/internal/engine/floors"
	"github.com/mapstead/overlay3d/pkg/scene"
)

// ErrNoDecoder is returned when a load is attempted without a decoder
// configured. Model file formats live behind the Decoder interface, so
// there is no built-in fallback.
var ErrNoDecoder = errors.New("no model decoder configured")

// ModelLoadError reports a failed fetch or decode for one model.
type ModelLoadError struct {
	ID  string
	Err error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("loading model %q: %v", e.ID, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// IDOf normalizes a model identifier to its string form. Identifiers may
// arrive as strings or integers.
func IDOf(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprint(v)
	}
}

// Request describes one model to load. It is consumed by a single load
// operation.
type Request struct {
	// ID is the model identifier, a string or an integer.
	ID any

	// Coords anchors the model geographically.
	Coords orb.Point

	// URL points at the binary model asset.
	URL string

	// RotateDeg is an XYZ Euler rotation in degrees.
	RotateDeg mgl32.Vec3

	// Scale is a uniform scale factor; zero means 1.
	Scale float32

	// Offset displaces the model from its projected anchor, in world
	// units.
	Offset mgl32.Vec3

	// LinkedFeatureIDs are 2D features to hide once the model shows.
	LinkedFeatureIDs []string

	// Floors holds level metadata for multi-story buildings, in display
	// order. InitialFloor must be one of them when set.
	Floors       []floors.Level
	InitialFloor string
}

// Fetcher retrieves a model asset.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Decoder parses a binary model asset into a scene node. Model file
// formats are outside this module; a third-party parser sits behind this
// interface.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (*scene.Node, error)
}

// HTTPFetcher fetches assets over HTTP.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Coordinator loads models into a registry.
type Coordinator struct {
	reg     *Registry
	fetch   Fetcher
	decode  Decoder
	project func(orb.Point) mgl32.Vec3
	log     *zap.Logger
}

// NewCoordinator wires a coordinator. log may be nil.
func NewCoordinator(reg *Registry, fetch Fetcher, decode Decoder, project func(orb.Point) mgl32.Vec3, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{reg: reg, fetch: fetch, decode: decode, project: project, log: log}
}

// LoadOne fetches and decodes one model and inserts it into the registry.
// The scene graph is never touched here. Failures carry the model ID and
// the underlying cause.
func (c *Coordinator) LoadOne(ctx context.Context, req Request) (*Model, error) {
	id := IDOf(req.ID)

	if c.decode == nil {
		return nil, &ModelLoadError{ID: id, Err: ErrNoDecoder}
	}

	data, err := c.fetch.Fetch(ctx, req.URL)
	if err != nil {
		return nil, &ModelLoadError{ID: id, Err: err}
	}

	node, err := c.decode.Decode(ctx, data)
	if err != nil {
		return nil, &ModelLoadError{ID: id, Err: err}
	}

	node.ID = id
	c.place(node, req)

	m := &Model{
		ID:               id,
		Node:             node,
		Coords:           req.Coords,
		LinkedFeatureIDs: req.LinkedFeatureIDs,
		Floors:           req.Floors,
		InitialFloor:     req.InitialFloor,
	}
	c.reg.Insert(m)

	c.log.Debug("model loaded",
		zap.String("id", id),
		zap.String("url", req.URL),
		zap.Int("bytes", len(data)),
	)
	return m, nil
}

// place applies the request transform to the decoded node.
func (c *Coordinator) place(node *scene.Node, req Request) {
	anchor := c.project(req.Coords)
	node.Position = anchor.Add(req.Offset)
	node.Rotation = mgl32.AnglesToQuat(
		mgl32.DegToRad(req.RotateDeg.X()),
		mgl32.DegToRad(req.RotateDeg.Y()),
		mgl32.DegToRad(req.RotateDeg.Z()),
		mgl32.XYZ,
	)
	s := req.Scale
	if s == 0 {
		s = 1
	}
	node.Scale = mgl32.Vec3{s, s, s}
}

// LoadBatch fans LoadOne out over every request concurrently, with no
// throttling. onLoaded fires once per successful load, in completion
// order, from the loading goroutine; callers needing serialization do it
// inside the callback.
//
// The returned error aggregates every individual failure. Loads do not
// cancel each other: one failure leaves its siblings running to
// completion.
func (c *Coordinator) LoadBatch(ctx context.Context, reqs []Request, onLoaded func(*Model)) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)

	for _, req := range reqs {
		req := req
		g.Go(func() error {
			m, err := c.LoadOne(ctx, req)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return err
			}
			if onLoaded != nil {
				onLoaded(m)
			}
			return nil
		})
	}

	g.Wait() // first error is folded into errs already
	return errs
}
