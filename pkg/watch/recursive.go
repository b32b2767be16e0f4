package watch

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/filesystem"
	"github.com/arthur-debert/fsbridge/pkg/logging"
)

// DefaultBuffer is the event channel capacity when Options.Buffer is unset
const DefaultBuffer = 1024

// Options configures a Recursive watcher
type Options struct {
	// FS is used to walk trees. Defaults to the OS filesystem.
	FS filesystem.FS

	// Ignore holds glob patterns for paths that are neither walked nor
	// reported.
	Ignore []string

	// Buffer is the capacity of the Events channel.
	Buffer int
}

type root struct {
	refs int
	dirs map[string]struct{}
}

// Recursive is a recursive watcher backed by fsnotify
type Recursive struct {
	fsw    *fsnotify.Watcher
	fs     filesystem.FS
	ignore *Matcher
	logger zerolog.Logger

	mu    sync.Mutex
	roots map[string]*root
	dirs  map[string]int // directory -> number of roots holding it

	events    chan Event
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Recursive watcher and starts its event loop
func New(opts Options) (*Recursive, error) {
	matcher, err := NewMatcher(opts.Ignore)
	if err != nil {
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatch, "failed to create fsnotify watcher")
	}

	w := &Recursive{
		fsw:    fsw,
		fs:     fsys,
		ignore: matcher,
		logger: logging.GetLogger("watch"),
		roots:  make(map[string]*root),
		dirs:   make(map[string]int),
		events: make(chan Event, buffer),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Events returns the raw event stream
func (w *Recursive) Events() <-chan Event {
	return w.events
}

// Errors returns fatal adapter errors
func (w *Recursive) Errors() <-chan error {
	return w.errs
}

// Watch starts watching path and everything beneath it. Watching a root
// that is already watched only bumps its reference count.
func (w *Recursive) Watch(path string) error {
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if r, ok := w.roots[path]; ok {
		r.refs++
		w.logger.Debug().Str("path", path).Int("refs", r.refs).Msg("Root already watched")
		return nil
	}

	info, err := w.fs.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", path).WithDetail("path", path)
	}
	r := &root{refs: 1, dirs: make(map[string]struct{})}
	if !info.IsDir() {
		// a single file, usually the target of a followed link
		if err := w.addDir(r, path); err != nil {
			return errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", path).WithDetail("path", path)
		}
		w.roots[path] = r
		w.logger.Info().Str("path", path).Msg("Watching file")
		return nil
	}

	err = filesystem.WalkDirs(w.fs, path, func(dir string) error {
		if dir != path && w.ignore.Match(dir) {
			return fs.SkipDir
		}
		return w.addDir(r, dir)
	})
	if err != nil {
		for dir := range r.dirs {
			w.releaseDir(dir)
		}
		return errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", path).WithDetail("path", path)
	}

	w.roots[path] = r
	w.logger.Info().Str("path", path).Int("dirs", len(r.dirs)).Msg("Watching root")
	return nil
}

// Unwatch releases one reference to a root previously passed to Watch
func (w *Recursive) Unwatch(path string) error {
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.roots[path]
	if !ok {
		return errors.Newf(errors.ErrWatch, "cannot unwatch %s: not watched", path).WithDetail("path", path)
	}
	r.refs--
	if r.refs > 0 {
		return nil
	}
	for dir := range r.dirs {
		w.releaseDir(dir)
	}
	delete(w.roots, path)
	w.logger.Info().Str("path", path).Msg("Stopped watching root")
	return nil
}

// Close stops the event loop and releases the fsnotify watcher. Events
// and Errors are closed once the loop exits.
func (w *Recursive) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

// addDir must be called with mu held. Files watched as roots go through
// here too.
func (w *Recursive) addDir(r *root, dir string) error {
	if _, ok := r.dirs[dir]; ok {
		return nil
	}
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	r.dirs[dir] = struct{}{}
	return nil
}

// releaseDir must be called with mu held
func (w *Recursive) releaseDir(dir string) {
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return
	}
	delete(w.dirs, dir)
	// the directory may already be gone, in which case fsnotify dropped it
	_ = w.fsw.Remove(dir)
}

func (w *Recursive) loop() {
	defer close(w.events)
	defer close(w.errs)

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				w.fail(errors.New(errors.ErrWatch, "fsnotify event stream closed"))
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.fail(errors.New(errors.ErrWatch, "fsnotify error stream closed"))
				return
			}
			if stderrors.Is(err, fsnotify.ErrEventOverflow) {
				w.fail(errors.Wrap(err, errors.ErrWatch, "event queue overflowed, changes were lost"))
				return
			}
			w.logger.Warn().Err(err).Msg("Watch error")
		}
	}
}

func (w *Recursive) fail(err error) {
	select {
	case w.errs <- err:
	case <-w.done:
	}
}

func (w *Recursive) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

func (w *Recursive) handle(ev fsnotify.Event) {
	if ev.Name == "" || (w.ignore.Match(ev.Name) && !w.isRoot(ev.Name)) {
		return
	}
	op := opFromFsnotify(ev.Op)
	w.logger.Trace().Str("path", ev.Name).Stringer("op", op).Msg("fsnotify event")

	var found []string
	switch op {
	case Create:
		found = w.adopt(ev.Name)
	case Remove, Rename:
		w.forget(ev.Name)
	}

	w.emit(Event{Path: ev.Name, Op: op})
	for _, p := range found {
		w.emit(Event{Path: p, Op: Create})
	}
}

func (w *Recursive) isRoot(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.roots[path]
	return ok
}

// adopt starts watching a newly created directory for every root whose
// tree contains its parent. It returns the entries already present inside
// it, which were created before the watch existed.
func (w *Recursive) adopt(path string) []string {
	info, err := w.fs.Lstat(path)
	if err != nil || !info.IsDir() {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	parent := filepath.Dir(path)
	var owners []*root
	for _, r := range w.roots {
		if _, ok := r.dirs[parent]; ok {
			owners = append(owners, r)
		}
	}
	if len(owners) == 0 {
		return nil
	}

	var found []string
	err = filesystem.WalkDirs(w.fs, path, func(dir string) error {
		if w.ignore.Match(dir) {
			return fs.SkipDir
		}
		for _, r := range owners {
			if err := w.addDir(r, dir); err != nil {
				return err
			}
		}
		entries, err := w.fs.ReadDir(dir)
		if err != nil {
			return nil
		}
		for _, entry := range entries {
			child := filepath.Join(dir, entry.Name())
			if !w.ignore.Match(child) {
				found = append(found, child)
			}
		}
		return nil
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("Failed to watch new directory")
	}
	return found
}

// forget drops a removed or renamed directory and its descendants
func (w *Recursive) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prefix := path + string(filepath.Separator)
	for _, r := range w.roots {
		for dir := range r.dirs {
			if dir == path || strings.HasPrefix(dir, prefix) {
				delete(r.dirs, dir)
				w.releaseDir(dir)
			}
		}
	}
}
