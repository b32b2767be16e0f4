package bridge

import (
	"io"

	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/protocol"
	"github.com/arthur-debert/fsbridge/pkg/watch"
)

// push delivers ev unless the session has ended. It reports whether the
// producer should keep going.
func push(queue chan<- Event, done <-chan struct{}, ev Event) bool {
	select {
	case queue <- ev:
		return ev.Kind != Failure
	case <-done:
		return false
	}
}

// readInput forwards controller lines until the input fails. End of input
// is fatal since the controller is gone.
func readInput(r *protocol.Reader, queue chan<- Event, done <-chan struct{}) {
	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			push(queue, done, Event{Kind: Failure, Err: errors.New(errors.ErrIO, "controller closed its input")})
			return
		}
		if err != nil {
			push(queue, done, Event{Kind: Failure, Err: err})
			return
		}
		if !push(queue, done, Event{Kind: Input, Line: line}) {
			return
		}
	}
}

// forwardChanges relays the watch adapter's streams. A closed stream means
// the adapter stopped and no further changes can be observed.
func forwardChanges(src watch.Source, queue chan<- Event, done <-chan struct{}) {
	events, errs := src.Events(), src.Errors()
	for {
		var ev Event
		select {
		case <-done:
			return
		case change, ok := <-events:
			if !ok {
				ev = Event{Kind: Failure, Err: errors.New(errors.ErrWatch, "watch event stream closed")}
			} else {
				ev = Event{Kind: Change, Change: change}
			}
		case err, ok := <-errs:
			if !ok {
				ev = Event{Kind: Failure, Err: errors.New(errors.ErrWatch, "watch error stream closed")}
			} else {
				ev = Event{Kind: Failure, Err: err}
			}
		}
		if !push(queue, done, ev) {
			return
		}
	}
}
