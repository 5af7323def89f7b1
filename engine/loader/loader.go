package loader

import (
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedFormat is returned when no backend handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]*model.ImportedModel

	// backends maps lower-case file extensions to the backend that imports them.
	backends map[string]loaderBackend

	workers int
}

// Loader imports model files into CPU-side ImportedModels and caches them by path.
// The file format is selected from the extension: .gltf and .glb use the glTF backend
// and .obj uses the Wavefront backend.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by cleaned file path), the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *model.ImportedModel: the loaded and cached model
	//   - error: error if the format is unsupported or loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadAll imports several model files concurrently. The result is in the order of paths.
	// The first failure is returned and the models that did load stay cached.
	//
	// Parameters:
	//   - paths: the model file paths
	//
	// Returns:
	//   - []*model.ImportedModel: the loaded models, index-aligned with paths
	//   - error: the first error encountered
	LoadAll(paths []string) ([]*model.ImportedModel, error)

	// Get retrieves a cached model by path. Returns nil if not found.
	//
	// Parameters:
	//   - path: the cache key to look up
	//
	// Returns:
	//   - *model.ImportedModel: the cached model or nil
	Get(path string) *model.ImportedModel

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]*model.ImportedModel: all cached models keyed by path
	Models() map[string]*model.ImportedModel
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF and OBJ backends registered and the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]*model.ImportedModel),
		backends:   make(map[string]loaderBackend),
		workers:    4,
	}
	l.register(newGLTFLoaderBackend())
	l.register(newOBJLoaderBackend())

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) register(b loaderBackend) {
	for _, ext := range b.Extensions() {
		l.backends[strings.ToLower(ext)] = b
	}
}

func (l *loader) Load(path string) (*model.ImportedModel, error) {
	key := filepath.Clean(path)

	l.mu.RLock()
	if cached, ok := l.modelCache[key]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(key)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Load(key)
	if err != nil {
		log.Printf("[Loader] failed to load %s: %v", key, err)
		return nil, errors.Wrapf(err, "failed to load %s", key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Another goroutine may have loaded the same file; keep the first result.
	if cached, ok := l.modelCache[key]; ok {
		return cached, nil
	}
	l.modelCache[key] = imported
	log.Printf("[Loader] loaded %s: %d meshes, %d materials", key, len(imported.Meshes), len(imported.Materials))
	return imported, nil
}

func (l *loader) LoadAll(paths []string) ([]*model.ImportedModel, error) {
	out := make([]*model.ImportedModel, len(paths))
	var g errgroup.Group
	g.SetLimit(l.workers)
	for i, path := range paths {
		g.Go(func() error {
			m, err := l.Load(path)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *loader) Get(path string) *model.ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[filepath.Clean(path)]
}

func (l *loader) Models() map[string]*model.ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*model.ImportedModel, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects the loader backend registered for the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if b, ok := l.backends[ext]; ok {
		return b, nil
	}
	return nil, errors.Mark(errors.Newf("unsupported model format %q for %s", ext, path), ErrUnsupportedFormat)
}
