package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFS(t *testing.T, dirs ...string) FS {
	t.Helper()
	mem := afero.NewMemMapFs()
	for _, d := range dirs {
		require.NoError(t, mem.MkdirAll(d, 0755))
	}
	return NewAferoFS(mem)
}

func TestWalkDirs(t *testing.T) {
	t.Run("visits_every_directory_parent_first", func(t *testing.T) {
		fsys := memFS(t, "/repo/a/b", "/repo/c")
		mem := fsys.(*aferoFS).fs
		require.NoError(t, afero.WriteFile(mem, "/repo/a/file.txt", []byte("x"), 0644))

		var seen []string
		err := WalkDirs(fsys, "/repo", func(dir string) error {
			seen = append(seen, dir)
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"/repo", "/repo/a", "/repo/a/b", "/repo/c"}, seen)
	})

	t.Run("skip_dir_prunes_subtree", func(t *testing.T) {
		fsys := memFS(t, "/repo/.git/objects", "/repo/src")

		var seen []string
		err := WalkDirs(fsys, "/repo", func(dir string) error {
			if filepath.Base(dir) == ".git" {
				return fs.SkipDir
			}
			seen = append(seen, dir)
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"/repo", "/repo/src"}, seen)
	})

	t.Run("missing_root_fails", func(t *testing.T) {
		fsys := memFS(t)
		err := WalkDirs(fsys, "/nope", func(string) error { return nil })
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("file_root_fails", func(t *testing.T) {
		fsys := memFS(t, "/repo")
		require.NoError(t, afero.WriteFile(fsys.(*aferoFS).fs, "/repo/f", nil, 0644))

		err := WalkDirs(fsys, "/repo/f", func(string) error { return nil })
		assert.ErrorIs(t, err, fs.ErrInvalid)
	})
}

func TestAferoEvalSymlinks(t *testing.T) {
	fsys := memFS(t, "/real/dir")

	got, err := fsys.EvalSymlinks("/real/dir/")
	require.NoError(t, err)
	assert.Equal(t, "/real/dir", got)

	_, err = fsys.EvalSymlinks("/missing")
	assert.Error(t, err)
}

func TestOSEvalSymlinks(t *testing.T) {
	base := t.TempDir()
	real := filepath.Join(base, "real")
	require.NoError(t, os.MkdirAll(filepath.Join(real, "sub"), 0755))
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(real, link))

	fsys := NewOS()

	want, err := filepath.EvalSymlinks(real)
	require.NoError(t, err)

	got, err := fsys.EvalSymlinks(filepath.Join(link, "sub"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(want, "sub"), got)

	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&fs.ModeSymlink)
}
