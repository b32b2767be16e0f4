package testutil

import (
	"sync"

	"github.com/arthur-debert/fsbridge/pkg/protocol"
)

// Recorder is a protocol.Sender that records encoded lines
type Recorder struct {
	mu    sync.Mutex
	lines []string

	// Err, when set, is returned from every Send after recording
	Err error
}

func (r *Recorder) Send(command string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, protocol.Encode(command, args...))
	return r.Err
}

// Lines returns everything sent so far
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Take returns everything sent since the last Take and forgets it
func (r *Recorder) Take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.lines
	r.lines = nil
	return lines
}
