// Package engine holds the event correlation engine: the single owner of
// the replica registry, the link alias map and the pending change sets.
//
// The engine is not safe for concurrent use. The session driver calls it
// from one goroutine, one controller line or filesystem event at a time.
//
// A raw event at an absolute path P is first expanded through every link
// whose canonical target is a path prefix of P, then attributed to every
// replica whose root is a path prefix of a candidate. Prefixes are matched
// on segment boundaries, so /repo1 never claims /repo12/x.
//
// Every failure the engine returns is fatal for the session; the driver
// reports it to the controller and the process exits.
package engine
