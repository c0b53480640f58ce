package overlay3d

import (
	"github.com/mapstead/overlay3d/internal/engine/floors"
	"github.com/mapstead/overlay3d/internal/engine/loader"
	"github.com/mapstead/overlay3d/pkg/mat"
)

// ModelLoadError reports a failed asset fetch or decode, carrying the
// model identifier and the underlying cause.
type ModelLoadError = loader.ModelLoadError

// ErrInvalidFloorLevel is returned by ShowFloorControl when the initial
// level is not part of the model's level set.
var ErrInvalidFloorLevel = floors.ErrInvalidFloorLevel

// ErrNoDecoder is returned by AddModel and AddModels when the plugin was
// constructed without a model decoder.
var ErrNoDecoder = loader.ErrNoDecoder

// ErrSingularMatrix indicates a non-invertible host matrix. It should not
// occur under valid host input; seeing it means a host/plugin version
// mismatch.
var ErrSingularMatrix = mat.ErrSingularMatrix
