package engine

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/fsbridge/pkg/errors"
)

// hasPathPrefix reports whether path equals prefix or lies beneath it
func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if strings.HasSuffix(prefix, string(filepath.Separator)) {
		return true
	}
	return path[len(prefix)] == filepath.Separator
}

// stripPathPrefix returns path relative to prefix with no leading
// separator, "" when they are equal. A path outside prefix is an
// internal error: callers check hasPathPrefix first.
func stripPathPrefix(path, prefix string) (string, error) {
	if !hasPathPrefix(path, prefix) {
		return "", errors.Newf(errors.ErrInternal, "%s is not under %s", path, prefix).
			WithDetail("path", path).
			WithDetail("prefix", prefix)
	}
	rel := strings.TrimPrefix(path, prefix)
	return strings.TrimLeft(rel, string(filepath.Separator)), nil
}
