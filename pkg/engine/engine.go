package engine

import (
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/filesystem"
	"github.com/arthur-debert/fsbridge/pkg/logging"
	"github.com/arthur-debert/fsbridge/pkg/protocol"
	"github.com/arthur-debert/fsbridge/pkg/watch"
)

// Options wires an Engine to its collaborators
type Options struct {
	Watcher watch.Watcher
	Sender  protocol.Sender

	// FS canonicalizes link targets. Defaults to the OS filesystem.
	FS filesystem.FS

	// OnDebug runs when the controller sends DEBUG. Defaults to
	// logging.EnableDebug.
	OnDebug func()
}

type pathSet map[string]struct{}

// Engine correlates controller commands and raw filesystem events
type Engine struct {
	watcher watch.Watcher
	out     protocol.Sender
	fs      filesystem.FS
	onDebug func()
	logger  zerolog.Logger

	negotiated bool
	// active is the root of the most recent START; LINK resolves against it
	active string

	replicas map[string]string  // id -> root
	links    map[string]pathSet // canonical target -> alias paths
	pending  map[string]pathSet // id -> relative paths
}

// New creates an Engine with an empty session
func New(opts Options) *Engine {
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	onDebug := opts.OnDebug
	if onDebug == nil {
		onDebug = logging.EnableDebug
	}
	return &Engine{
		watcher:  opts.Watcher,
		out:      opts.Sender,
		fs:       fsys,
		onDebug:  onDebug,
		logger:   logging.GetLogger("engine"),
		replicas: make(map[string]string),
		links:    make(map[string]pathSet),
		pending:  make(map[string]pathSet),
	}
}

// Start announces the protocol version. It must be called once, before
// any input is handled.
func (e *Engine) Start() error {
	return e.out.Send(protocol.CmdVersion, protocol.Version)
}

// HandleEvent attributes a raw filesystem change to every replica that
// can see it and pushes CHANGES for each of them.
func (e *Engine) HandleEvent(ev watch.Event) error {
	e.logger.Debug().Str("path", ev.Path).Stringer("op", ev.Op).Msg("Filesystem event")

	candidates := pathSet{ev.Path: {}}
	for target, aliases := range e.links {
		if !hasPathPrefix(ev.Path, target) {
			continue
		}
		suffix, err := stripPathPrefix(ev.Path, target)
		if err != nil {
			return err
		}
		for alias := range aliases {
			candidates[filepath.Join(alias, suffix)] = struct{}{}
		}
	}

	matched := make(map[string]struct{})
	for candidate := range candidates {
		for id, root := range e.replicas {
			if !hasPathPrefix(candidate, root) {
				continue
			}
			rel, err := stripPathPrefix(candidate, root)
			if err != nil {
				return err
			}
			set, ok := e.pending[id]
			if !ok {
				set = make(pathSet)
				e.pending[id] = set
			}
			set[filepath.ToSlash(rel)] = struct{}{}
			matched[id] = struct{}{}
		}
	}

	if len(matched) == 0 {
		e.logger.Trace().Str("path", ev.Path).Msg("Event matches no replica")
		return nil
	}

	for _, id := range sortedKeys(matched) {
		if err := e.out.Send(protocol.CmdChanges, id); err != nil {
			return err
		}
	}
	return nil
}

// drain removes and returns a replica's pending paths in sorted order
func (e *Engine) drain(id string) []string {
	set := e.pending[id]
	delete(e.pending, id)
	return sortedKeys(set)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// unknownReplica builds the error for a command naming an unregistered id
func unknownReplica(command, id string) error {
	return errors.Newf(errors.ErrUnknownReplica, "Unknown replica: %s", id).
		WithDetail("command", command).
		WithDetail("replica", id)
}
