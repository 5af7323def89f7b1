package shader

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// ErrUnknownProgram is returned when an index does not name a loaded program.
var ErrUnknownProgram = errors.New("shader: unknown program")

// Reloaded reports one program that was recompiled by Poll.
type Reloaded struct {
	Index       uint32
	OldIdentity uint64
	Program     Program
}

type libraryEntry struct {
	path    string
	name    string
	program *program
	// modTime is the last modification time seen, including failed recompiles.
	modTime time.Time
}

// library is the implementation of the Library interface.
type library struct {
	entries []*libraryEntry
	byKey   map[[2]string]uint32

	backend  ModuleBackend
	validate Validator

	watch   bool
	watcher *fsnotify.Watcher
	watched map[string]bool
	done    chan struct{}

	// dirtyMu guards dirty, which the watcher goroutine writes.
	dirtyMu sync.Mutex
	dirty   map[string]bool
}

// Library owns every loaded program and recompiles them when their source changes.
// All methods except the watcher's internals run on the render thread.
type Library interface {
	// Load compiles a program from path, or returns the index of the program already
	// loaded for the same path and name.
	//
	// Parameters:
	//   - path: the WGSL source file
	//   - name: the program name
	//
	// Returns:
	//   - uint32: the program index
	//   - error: the read or ErrCompile diagnostic
	Load(path, name string) (uint32, error)

	// Get returns the live program at idx, or nil.
	Get(idx uint32) Program

	// Index looks a program up by name.
	Index(name string) (uint32, bool)

	// Poll checks source modification times once per frame and recompiles changed programs.
	// A failed recompile keeps the previous program and is not retried until the file changes again.
	//
	// Returns:
	//   - []Reloaded: the programs that received a new identity
	Poll() []Reloaded

	// Len returns the number of loaded programs.
	Len() int

	// Close stops the watcher and releases every module.
	Close() error
}

var _ Library = &library{}

// NewLibrary creates a program Library.
//
// Parameters:
//   - options: variadic list of LibraryBuilderOption functions
//
// Returns:
//   - Library: the library
//   - error: an error if the file watcher could not be started
func NewLibrary(options ...LibraryBuilderOption) (Library, error) {
	l := &library{
		byKey:    make(map[[2]string]uint32),
		backend:  NewHostModuleBackend(),
		validate: NagaValidator,
		watched:  make(map[string]bool),
		dirty:    make(map[string]bool),
	}
	for _, opt := range options {
		opt(l)
	}
	if l.watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, errors.Wrap(err, "shader: start watcher")
		}
		l.watcher = w
		l.done = make(chan struct{})
		go l.watchLoop()
	}
	return l, nil
}

func (l *library) Load(path, name string) (uint32, error) {
	path = filepath.Clean(path)
	key := [2]string{path, name}
	if idx, ok := l.byKey[key]; ok {
		return idx, nil
	}

	p, modTime, err := l.build(path, name)
	if err != nil {
		logCompileError(err)
		return 0, err
	}

	idx := uint32(len(l.entries))
	l.entries = append(l.entries, &libraryEntry{path: path, name: name, program: p, modTime: modTime})
	l.byKey[key] = idx
	if err := l.watchPath(path); err != nil {
		log.Printf("[Shader] watch %s: %v", path, err)
	}
	log.Printf("[Shader] loaded %s from %s (identity %d, %d vertex inputs)", name, path, p.identity, len(p.inputs.Inputs))
	return idx, nil
}

func (l *library) Get(idx uint32) Program {
	if int(idx) >= len(l.entries) {
		return nil
	}
	return l.entries[idx].program
}

func (l *library) Index(name string) (uint32, bool) {
	for i, e := range l.entries {
		if e.name == name {
			return uint32(i), true
		}
	}
	return 0, false
}

func (l *library) Len() int {
	return len(l.entries)
}

func (l *library) Poll() []Reloaded {
	var dirty map[string]bool
	if l.watcher != nil {
		l.dirtyMu.Lock()
		dirty, l.dirty = l.dirty, make(map[string]bool)
		l.dirtyMu.Unlock()
		if len(dirty) == 0 {
			return nil
		}
	}

	var reloaded []Reloaded
	for i, e := range l.entries {
		if dirty != nil && !dirty[e.path] {
			continue
		}
		info, err := os.Stat(e.path)
		if err != nil || !info.ModTime().After(e.modTime) {
			continue
		}
		e.modTime = info.ModTime()

		p, modTime, err := l.build(e.path, e.name)
		if err != nil {
			logCompileError(errors.Wrapf(err, "reload kept identity %d", e.program.identity))
			continue
		}
		e.modTime = modTime

		old := e.program
		e.program = p
		l.backend.Release(old.module)
		reloaded = append(reloaded, Reloaded{Index: uint32(i), OldIdentity: old.identity, Program: p})
		log.Printf("[Shader] reloaded %s (identity %d -> %d)", e.name, old.identity, p.identity)
	}
	return reloaded
}

func (l *library) Close() error {
	for _, e := range l.entries {
		l.backend.Release(e.program.module)
	}
	if l.watcher == nil {
		return nil
	}
	close(l.done)
	return l.watcher.Close()
}

// build reads, compiles and creates the module for one source file.
func (l *library) build(path, name string) (*program, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, errors.Wrapf(err, "shader: program %s", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, errors.Wrapf(err, "shader: program %s", name)
	}
	p, err := compile(name, path, string(data), l.validate)
	if err != nil {
		return nil, info.ModTime(), err
	}
	module, err := l.backend.CreateModule(name, p.source)
	if err != nil {
		return nil, info.ModTime(), errors.Mark(errors.Wrapf(err, "program %s (%s): create module", name, path), ErrCompile)
	}
	p.module = module
	p.modTime = info.ModTime()
	return p, info.ModTime(), nil
}

// watchPath watches the directory of path so editors that replace files by rename are seen.
func (l *library) watchPath(path string) error {
	if l.watcher == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if l.watched[dir] {
		return nil
	}
	if err := l.watcher.Add(dir); err != nil {
		return err
	}
	l.watched[dir] = true
	return nil
}

func (l *library) watchLoop() {
	for {
		select {
		case <-l.done:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				l.dirtyMu.Lock()
				l.dirty[filepath.Clean(event.Name)] = true
				l.dirtyMu.Unlock()
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Shader] watcher: %v", err)
		}
	}
}
