// Package paths centralizes where fsbridge keeps its files.
//
// Locations follow the XDG base directory layout:
//   - config: $XDG_CONFIG_HOME/fsbridge/config.toml
//   - log:    $XDG_STATE_HOME/fsbridge/fsbridge.log
//
// The XDG variables are read at call time so tests can redirect them with
// t.Setenv. Paths given by the user may start with ~ and are expanded with
// ExpandHome.
package paths
