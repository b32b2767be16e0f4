package protocol

import (
	"bufio"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/logging"
)

// Sender emits protocol lines to the controller
type Sender interface {
	Send(command string, args ...string) error
}

// Writer writes one flushed line per Send
type Writer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	logger zerolog.Logger
}

// NewWriter wraps w, typically os.Stdout
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:      bufio.NewWriter(w),
		logger: logging.GetLogger("protocol"),
	}
}

// Send encodes and writes a line, then flushes it to the controller
func (w *Writer) Send(command string, args ...string) error {
	line := Encode(command, args...)
	w.logger.Debug().Msgf(">> %s", line)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.w.WriteString(line); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to write to controller")
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to write to controller")
	}
	if err := w.w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to flush to controller")
	}
	return nil
}
