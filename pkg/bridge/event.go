package bridge

import (
	"fmt"

	"github.com/arthur-debert/fsbridge/pkg/watch"
)

// Kind tags the variant carried by an Event
type Kind int

const (
	// Input is a line read from the controller
	Input Kind = iota
	// Change is a raw filesystem event from the watch adapter
	Change
	// Failure is a fatal error raised by a producer
	Failure
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Change:
		return "change"
	case Failure:
		return "failure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one unit of work for the session loop. Only the field matching
// Kind is set.
type Event struct {
	Kind   Kind
	Line   string
	Change watch.Event
	Err    error
}
