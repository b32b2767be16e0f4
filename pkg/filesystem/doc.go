// Package filesystem provides filesystem implementations for fsbridge.
//
// The watch adapter walks directory trees and the correlation engine
// canonicalizes symlink targets through the FS interface, so both can be
// exercised against an in-memory afero filesystem in tests.
package filesystem
