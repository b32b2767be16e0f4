package filesystem

import (
	"io/fs"
	"path/filepath"
)

// FS is the subset of filesystem operations fsbridge needs
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)

	// EvalSymlinks returns the absolute path with every symbolic link
	// resolved.
	EvalSymlinks(path string) (string, error)
}

// WalkDirs calls fn for root and every directory beneath it, parents
// before children. Returning fs.SkipDir from fn skips that subtree.
// Entries that vanish during the walk are ignored.
func WalkDirs(fsys FS, root string, fn func(dir string) error) error {
	info, err := fsys.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "walk", Path: root, Err: fs.ErrInvalid}
	}
	return walkDirs(fsys, root, fn)
}

func walkDirs(fsys FS, dir string, fn func(dir string) error) error {
	if err := fn(dir); err != nil {
		if err == fs.SkipDir {
			return nil
		}
		return err
	}
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		// removed between stat and read
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := walkDirs(fsys, filepath.Join(dir, entry.Name()), fn); err != nil {
			return err
		}
	}
	return nil
}
