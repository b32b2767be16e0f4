package bridge

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/fsbridge/pkg/engine"
	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/filesystem"
	"github.com/arthur-debert/fsbridge/pkg/logging"
	"github.com/arthur-debert/fsbridge/pkg/protocol"
	"github.com/arthur-debert/fsbridge/pkg/watch"
)

// DefaultQueueSize is the merge queue capacity when Options.QueueSize is unset
const DefaultQueueSize = 64

// Options configures a session
type Options struct {
	// In carries controller commands, Out carries responses.
	In  io.Reader
	Out io.Writer

	// Watcher and Source are usually the same *watch.Recursive.
	Watcher watch.Watcher
	Source  watch.Source

	FS        filesystem.FS
	QueueSize int
	OnDebug   func()
}

// Run serves one controller session. It returns nil when ctx is cancelled
// and the fatal error otherwise, after reporting it on Out.
func Run(ctx context.Context, opts Options) error {
	logger := logging.GetLogger("bridge")
	if opts.In == nil || opts.Out == nil || opts.Watcher == nil || opts.Source == nil {
		return errors.New(errors.ErrInternal, "bridge requires input, output and a watch adapter")
	}

	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}

	out := protocol.NewWriter(opts.Out)
	eng := engine.New(engine.Options{
		Watcher: opts.Watcher,
		Sender:  out,
		FS:      opts.FS,
		OnDebug: opts.OnDebug,
	})
	if err := eng.Start(); err != nil {
		return err
	}

	queue := make(chan Event, size)
	done := make(chan struct{})
	defer close(done)

	defer logging.LogOperationStart(logger, "session")()

	go readInput(protocol.NewReader(opts.In), queue, done)
	go forwardChanges(opts.Source, queue, done)
	logger.Info().Int("queue", size).Msg("Session started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Session cancelled")
			return nil
		case ev := <-queue:
			if err := dispatch(eng, ev); err != nil {
				report(logger, out, err)
				return err
			}
		}
	}
}

func dispatch(eng *engine.Engine, ev Event) error {
	switch ev.Kind {
	case Input:
		return eng.HandleLine(ev.Line)
	case Change:
		return eng.HandleEvent(ev.Change)
	case Failure:
		return ev.Err
	}
	return errors.Newf(errors.ErrInternal, "unexpected event %s", ev.Kind)
}

// report tells the controller why the session ends. The write may fail if
// the controller is already gone; the error is returned to the caller
// either way.
func report(logger zerolog.Logger, out protocol.Sender, err error) {
	logger.Error().Err(err).
		Str("code", string(errors.GetErrorCode(err))).
		Fields(errors.GetErrorDetails(err)).
		Msg("Session failed")
	if sendErr := out.Send(protocol.RespError, err.Error()); sendErr != nil {
		logger.Debug().Err(sendErr).Msg("Could not report error to controller")
	}
}
