// pkg/bridge/bridge_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: io.Pipe controller, testutil.FakeWatcher, real fsnotify
// PURPOSE: Test full sessions from controller input to protocol output

package bridge

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/testutil"
	"github.com/arthur-debert/fsbridge/pkg/watch"
)

const lineTimeout = 5 * time.Second

// session is a controller talking to a running bridge through pipes
type session struct {
	in     *io.PipeWriter
	lines  chan string
	result chan error
	cancel context.CancelFunc
}

func startSession(t *testing.T, watcher watch.Watcher, source watch.Source) *session {
	t.Helper()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	s := &session{
		in:     inW,
		lines:  make(chan string, 64),
		result: make(chan error, 1),
		cancel: cancel,
	}

	go func() {
		scanner := bufio.NewScanner(outR)
		for scanner.Scan() {
			s.lines <- scanner.Text()
		}
		close(s.lines)
	}()

	go func() {
		err := Run(ctx, Options{
			In:      inR,
			Out:     outW,
			Watcher: watcher,
			Source:  source,
			OnDebug: func() {},
		})
		_ = outW.Close()
		s.result <- err
	}()

	t.Cleanup(func() {
		cancel()
		_ = inW.Close()
	})
	return s
}

func (s *session) send(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		_, err := io.WriteString(s.in, line+"\n")
		require.NoError(t, err)
	}
}

func (s *session) next(t *testing.T) string {
	t.Helper()
	select {
	case line, ok := <-s.lines:
		require.True(t, ok, "output closed")
		return line
	case <-time.After(lineTimeout):
		require.FailNow(t, "timed out waiting for output")
	}
	return ""
}

func (s *session) expect(t *testing.T, want ...string) {
	t.Helper()
	for _, w := range want {
		assert.Equal(t, w, s.next(t))
	}
}

func (s *session) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-s.result:
		return err
	case <-time.After(lineTimeout):
		require.FailNow(t, "session did not end")
	}
	return nil
}

func TestRun_ChangesScenario(t *testing.T) {
	fake := testutil.NewFakeWatcher()
	s := startSession(t, fake, fake)

	s.expect(t, "VERSION 1")
	s.send(t, "VERSION 1", "START r1 /repo1")
	s.expect(t, "OK")

	fake.Emit("/repo1/a.txt", watch.Write)
	s.expect(t, "CHANGES r1")

	s.send(t, "CHANGES r1")
	s.expect(t, "RECURSIVE a.txt", "DONE")

	s.send(t, "CHANGES r1")
	s.expect(t, "DONE")

	s.cancel()
	assert.NoError(t, s.wait(t))
}

func TestRun_FatalCommandReportsError(t *testing.T) {
	fake := testutil.NewFakeWatcher()
	s := startSession(t, fake, fake)

	s.expect(t, "VERSION 1")
	s.send(t, "VERSION 1", "WAIT nope")

	line := s.next(t)
	assert.True(t, strings.HasPrefix(line, "ERROR "), line)
	assert.Contains(t, line, "nope")

	err := s.wait(t)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownReplica))
}

func TestRun_InputClosedIsFatal(t *testing.T) {
	fake := testutil.NewFakeWatcher()
	s := startSession(t, fake, fake)

	s.expect(t, "VERSION 1")
	require.NoError(t, s.in.Close())

	assert.True(t, strings.HasPrefix(s.next(t), "ERROR "))
	assert.True(t, errors.IsErrorCode(s.wait(t), errors.ErrIO))
}

func TestRun_WatchFailures(t *testing.T) {
	t.Run("adapter_error", func(t *testing.T) {
		fake := testutil.NewFakeWatcher()
		s := startSession(t, fake, fake)
		s.expect(t, "VERSION 1")

		boom := errors.New(errors.ErrWatch, "event queue overflowed")
		fake.Fail(boom)

		assert.True(t, strings.HasPrefix(s.next(t), "ERROR "))
		assert.True(t, stderrors.Is(s.wait(t), boom))
	})

	t.Run("events_closed", func(t *testing.T) {
		fake := testutil.NewFakeWatcher()
		s := startSession(t, fake, fake)
		s.expect(t, "VERSION 1")

		fake.CloseEvents()

		assert.True(t, strings.HasPrefix(s.next(t), "ERROR "))
		assert.True(t, errors.IsErrorCode(s.wait(t), errors.ErrWatch))
	})
}

func TestRun_MissingCollaborators(t *testing.T) {
	err := Run(context.Background(), Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestRun_RealWatcher(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	w, err := watch.New(watch.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	s := startSession(t, w, w)
	s.expect(t, "VERSION 1")
	s.send(t, "VERSION 1", "START r "+root)
	s.expect(t, "OK")

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644))
	s.expect(t, "CHANGES r")

	s.send(t, "CHANGES r")
	var got []string
	for {
		line := s.next(t)
		if line == "DONE" {
			break
		}
		got = append(got, line)
	}
	assert.Contains(t, got, "RECURSIVE a.txt")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "input", Input.String())
	assert.Equal(t, "change", Change.String())
	assert.Equal(t, "failure", Failure.String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}

func TestRun_LinkToFile(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	repo := filepath.Join(base, "repo")
	target := filepath.Join(base, "real.txt")
	require.NoError(t, os.MkdirAll(repo, 0755))
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
	require.NoError(t, os.Symlink(filepath.Join("..", "real.txt"), filepath.Join(repo, "L")))

	w, err := watch.New(watch.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	s := startSession(t, w, w)
	s.expect(t, "VERSION 1")
	s.send(t, "VERSION 1", "START r "+repo)
	s.expect(t, "OK")
	s.send(t, "LINK L")
	s.expect(t, "OK")

	require.NoError(t, os.WriteFile(target, []byte("changed"), 0644))
	s.expect(t, "CHANGES r")

	s.send(t, "CHANGES r")
	var got []string
	for {
		line := s.next(t)
		if line == "DONE" {
			break
		}
		got = append(got, line)
	}
	assert.Contains(t, got, "RECURSIVE L")
}
