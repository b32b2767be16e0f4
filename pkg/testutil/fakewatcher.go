package testutil

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/watch"
)

// FakeWatcher is an in-memory watch adapter. Watch always succeeds unless
// the path was registered with FailOn; events are injected with Emit.
type FakeWatcher struct {
	mu      sync.Mutex
	roots   map[string]int
	failing map[string]error

	events chan watch.Event
	errs   chan error
}

// NewFakeWatcher creates a FakeWatcher with buffered streams
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{
		roots:   make(map[string]int),
		failing: make(map[string]error),
		events:  make(chan watch.Event, 64),
		errs:    make(chan error, 1),
	}
}

// FailOn makes Watch(path) fail with a WATCH error
func (f *FakeWatcher) FailOn(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[filepath.Clean(path)] = fmt.Errorf("no such file or directory")
}

func (f *FakeWatcher) Watch(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	path = filepath.Clean(path)
	if err, ok := f.failing[path]; ok {
		return errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", path)
	}
	f.roots[path]++
	return nil
}

func (f *FakeWatcher) Unwatch(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	path = filepath.Clean(path)
	if f.roots[path] == 0 {
		return errors.Newf(errors.ErrWatch, "cannot unwatch %s: not watched", path)
	}
	f.roots[path]--
	if f.roots[path] == 0 {
		delete(f.roots, path)
	}
	return nil
}

// Watched reports whether path currently holds at least one reference
func (f *FakeWatcher) Watched(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roots[filepath.Clean(path)] > 0
}

// Emit injects a raw event as if the filesystem reported it. Events under
// roots that are no longer watched are dropped, like a real adapter.
func (f *FakeWatcher) Emit(path string, op watch.Op) {
	f.mu.Lock()
	covered := false
	for root := range f.roots {
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !startsWithParent(rel) {
			covered = true
			break
		}
	}
	f.mu.Unlock()
	if covered {
		f.events <- watch.Event{Path: path, Op: op}
	}
}

// Fail injects a fatal adapter error
func (f *FakeWatcher) Fail(err error) {
	f.errs <- err
}

// CloseEvents closes the event stream as if the adapter died
func (f *FakeWatcher) CloseEvents() {
	close(f.events)
}

func (f *FakeWatcher) Events() <-chan watch.Event {
	return f.events
}

func (f *FakeWatcher) Errors() <-chan error {
	return f.errs
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
