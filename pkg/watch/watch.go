package watch

import (
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Op describes what happened to a path
type Op uint8

const (
	Create Op = iota + 1
	Write
	Remove
	Rename
	Chmod
)

func (o Op) String() string {
	switch o {
	case Create:
		return "create"
	case Write:
		return "write"
	case Remove:
		return "remove"
	case Rename:
		return "rename"
	case Chmod:
		return "chmod"
	default:
		return "unknown"
	}
}

// Event is a raw change notification for an absolute path
type Event struct {
	Path string
	Op   Op
}

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Op.String())
	b.WriteByte(' ')
	b.WriteString(e.Path)
	return b.String()
}

// Watcher registers and releases recursive watch roots
type Watcher interface {
	Watch(path string) error
	Unwatch(path string) error
}

// Source delivers raw events and fatal adapter errors
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
}

// opFromFsnotify picks the most significant bit of an fsnotify op
func opFromFsnotify(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return Create
	case op.Has(fsnotify.Remove):
		return Remove
	case op.Has(fsnotify.Rename):
		return Rename
	case op.Has(fsnotify.Write):
		return Write
	default:
		return Chmod
	}
}
