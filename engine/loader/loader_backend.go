package loader

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
)

// loaderBackend imports one model file format.
// Concrete implementations (gltfLoaderBackendImpl, objLoaderBackendImpl) handle format-specific details.
type loaderBackend interface {
	// Load imports the meshes and materials of a model file.
	// Texture paths in the result are resolved relative to the file's directory.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// Extensions returns the lower-case file extensions the backend handles.
	Extensions() []string
}
