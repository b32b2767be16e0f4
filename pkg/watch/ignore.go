package watch

import (
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/arthur-debert/fsbridge/pkg/errors"
)

// Matcher reports whether an absolute path is excluded from watching
type Matcher struct {
	globs []glob.Glob
}

// NewMatcher compiles patterns with "/" as the separator, so "*" stays
// within one path segment and "**" crosses them.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "invalid ignore pattern %q", pattern).
				WithDetail("pattern", pattern)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether any pattern matches path. A nil Matcher matches
// nothing.
func (m *Matcher) Match(path string) bool {
	if m == nil {
		return false
	}
	slashed := filepath.ToSlash(path)
	for _, g := range m.globs {
		if g.Match(slashed) {
			return true
		}
	}
	return false
}
