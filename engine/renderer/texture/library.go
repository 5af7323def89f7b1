package texture

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/cockroachdb/errors"
)

type libraryEntry struct {
	key    string
	handle any
}

// library is the implementation of the Library interface.
type library struct {
	backend Backend
	sampler common.SamplerStagingData
	workers int
	// pool decodes for every Preload call; created on first use and stopped by Close.
	pool worker.DynamicWorkerPool

	entries []*libraryEntry
	byKey   map[string]uint32
}

// Library owns every created texture. Textures are addressed by index.
// Load, Register and Get run on the render thread; Preload decodes on a worker pool.
type Library interface {
	// Load creates a texture from an image file, or returns the index already created for path.
	//
	// Parameters:
	//   - path: the image file
	//
	// Returns:
	//   - uint32: the texture index, or NotFound
	//   - error: ErrDecode or ErrUnsupportedChannels, reported without aborting
	Load(path string) (uint32, error)

	// LoadBytes creates a texture from encoded image bytes registered under key.
	//
	// Parameters:
	//   - key: the identity used for idempotent loading
	//   - data: the encoded image
	//
	// Returns:
	//   - uint32: the texture index, or NotFound
	//   - error: ErrDecode or ErrUnsupportedChannels
	LoadBytes(key string, data []byte) (uint32, error)

	// Register creates a texture from an already decoded image under key.
	//
	// Parameters:
	//   - key: the identity used for idempotent loading
	//   - img: the decoded image
	//
	// Returns:
	//   - uint32: the texture index, or NotFound
	//   - error: ErrUnsupportedChannels or the backend error
	Register(key string, img Image) (uint32, error)

	// Preload decodes the given files in parallel and creates their textures in order.
	// Failed files are logged and skipped.
	//
	// Parameters:
	//   - paths: the image files
	//   - progress: called on the caller's goroutine after each texture, may be nil
	//
	// Returns:
	//   - []uint32: the texture index of each path, NotFound for failures
	Preload(paths []string, progress func(done, total int)) []uint32

	// Get returns the backend handle of a texture, or nil for NotFound and unknown indices.
	Get(idx uint32) any

	// Index returns the texture index registered for key.
	Index(key string) (uint32, bool)

	// Len returns the number of textures.
	Len() int

	// Close releases every texture and stops the decode workers.
	Close()
}

var _ Library = &library{}

// NewLibrary creates a texture Library.
//
// Parameters:
//   - options: variadic list of LibraryBuilderOption functions
//
// Returns:
//   - Library: the texture library
func NewLibrary(options ...LibraryBuilderOption) Library {
	l := &library{
		backend: NewHostBackend(),
		workers: runtime.NumCPU(),
		byKey:   make(map[string]uint32),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *library) Load(path string) (uint32, error) {
	key := filepath.Clean(path)
	if idx, ok := l.byKey[key]; ok {
		return idx, nil
	}
	img, err := decodeFile(key)
	if err != nil {
		log.Printf("[Texture] could not open file %s: %v", key, err)
		return NotFound, err
	}
	return l.Register(key, img)
}

func (l *library) LoadBytes(key string, data []byte) (uint32, error) {
	if idx, ok := l.byKey[key]; ok {
		return idx, nil
	}
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("[Texture] could not decode %s: %v", key, err)
		return NotFound, err
	}
	return l.Register(key, img)
}

func (l *library) Register(key string, img Image) (uint32, error) {
	if idx, ok := l.byKey[key]; ok {
		return idx, nil
	}
	rgba, err := img.RGBA()
	if err != nil {
		err = errors.Wrapf(err, "texture %s", key)
		log.Printf("[Texture] %v", err)
		return NotFound, err
	}
	handle, err := l.backend.Create(common.TextureStagingData{
		Label:  key,
		Pixels: rgba.Pixels,
		Width:  uint32(rgba.Width),
		Height: uint32(rgba.Height),
	}, l.sampler)
	if err != nil {
		err = errors.Wrapf(err, "texture %s: create", key)
		log.Printf("[Texture] %v", err)
		return NotFound, err
	}

	idx := uint32(len(l.entries))
	l.entries = append(l.entries, &libraryEntry{key: key, handle: handle})
	l.byKey[key] = idx
	return idx, nil
}

func (l *library) Preload(paths []string, progress func(done, total int)) []uint32 {
	type decoded struct {
		img Image
		err error
	}
	results := make([]decoded, len(paths))

	pending := make([]int, 0, len(paths))
	for i, p := range paths {
		if _, ok := l.byKey[filepath.Clean(p)]; !ok {
			pending = append(pending, i)
		}
	}

	if len(pending) > 0 {
		pool := l.decodePool()
		var wg sync.WaitGroup
		for _, i := range pending {
			wg.Add(1)
			path := filepath.Clean(paths[i])
			slot := &results[i]
			pool.SubmitTask(worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					slot.img, slot.err = decodeFile(path)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	out := make([]uint32, len(paths))
	for i, p := range paths {
		key := filepath.Clean(p)
		switch {
		case l.has(key):
			out[i] = l.byKey[key]
		case results[i].err != nil:
			log.Printf("[Texture] could not open file %s: %v", key, results[i].err)
			out[i] = NotFound
		default:
			out[i], _ = l.Register(key, results[i].img)
		}
		if progress != nil {
			progress(i+1, len(paths))
		}
	}
	return out
}

// decodePool returns the library's worker pool, starting its workers on the first call.
func (l *library) decodePool() worker.DynamicWorkerPool {
	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(l.workers, l.workers*4, time.Second)
	}
	return l.pool
}

func (l *library) has(key string) bool {
	_, ok := l.byKey[key]
	return ok
}

func (l *library) Get(idx uint32) any {
	if idx == NotFound || int(idx) >= len(l.entries) {
		return nil
	}
	return l.entries[idx].handle
}

func (l *library) Index(key string) (uint32, bool) {
	idx, ok := l.byKey[key]
	return idx, ok
}

func (l *library) Len() int {
	return len(l.entries)
}

func (l *library) Close() {
	for _, e := range l.entries {
		l.backend.Release(e.handle)
	}
	l.entries = nil
	clear(l.byKey)
	if l.pool != nil {
		l.pool.Stop()
		l.pool = nil
	}
}

// decodeFile reads and decodes one image file.
func decodeFile(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, errors.Mark(errors.Wrap(err, "texture: open"), ErrDecode)
	}
	defer f.Close()
	return Decode(f)
}
