// Package bridge runs a controller session.
//
// Two producers feed one queue: a reader that turns controller input into
// lines, and a forwarder that relays the watch adapter's events and errors.
// Run is the only consumer; it owns the engine and every protocol write, so
// no state is shared between goroutines beyond the queue itself.
//
// Any error returned while handling an event ends the session. Run reports
// it to the controller as a single ERROR line and returns it.
package bridge
