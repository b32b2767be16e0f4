// Package testutil provides utilities for testing fsbridge components.
//
// Key components:
//   - MockWatcher: testify mock of watch.Watcher for exact call assertions
//   - FakeWatcher: in-memory watch.Watcher and watch.Source whose events
//     are injected by the test
//   - Recorder: protocol.Sender that keeps every encoded line
package testutil
