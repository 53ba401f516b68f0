package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestDirSizeAdditivity(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bin"), 100)
	writeFile(t, filepath.Join(root, "b.bin"), 200)
	writeFile(t, filepath.Join(root, "sub", "c.bin"), 300)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	s := &Sizer{}
	total, err := s.DirSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(600), total)
}

func TestDirSizeMeasuresEverything(t *testing.T) {
	// Unlike the locator, the sizer descends into nested node_modules and
	// ignore-named directories alike.
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "x.bin"), 10)
	writeFile(t, filepath.Join(root, ".git", "y.bin"), 20)
	writeFile(t, filepath.Join(root, ".cache", "deep", "z.bin"), 30)

	s := &Sizer{}
	total, err := s.DirSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(60), total)
}

func TestDirSizeEmptyTree(t *testing.T) {
	s := &Sizer{}
	total, err := s.DirSize(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDirSizeMissingRoot(t *testing.T) {
	s := &Sizer{}
	_, err := s.DirSize(filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestDirSizeIgnoresSymlinksByDefault(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "big.bin"), 4096)
	writeFile(t, filepath.Join(root, "small.bin"), 5)
	symlinkOrSkip(t, filepath.Join(outside, "big.bin"), filepath.Join(root, "link"))

	s := &Sizer{}
	total, err := s.DirSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestDirSizeFollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "file.bin"), 64)
	writeFile(t, filepath.Join(outside, "dir", "nested.bin"), 128)
	symlinkOrSkip(t, filepath.Join(outside, "file.bin"), filepath.Join(root, "filelink"))
	symlinkOrSkip(t, filepath.Join(outside, "dir"), filepath.Join(root, "dirlink"))

	s := &Sizer{FollowSymlinks: true}
	total, err := s.DirSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(192), total)
}

func TestDirSizeBrokenSymlinkContributesZero(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.bin"), 7)
	symlinkOrSkip(t, filepath.Join(root, "never-existed"), filepath.Join(root, "dangling"))

	s := &Sizer{FollowSymlinks: true}
	total, err := s.DirSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
}

func TestDirSizeUnreadableSubtreeDegrades(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root, permission bits have no teeth")
	}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.bin"), 50)
	writeFile(t, filepath.Join(root, "locked", "hidden.bin"), 1000)
	require.NoError(t, os.Chmod(filepath.Join(root, "locked"), 0o000))
	t.Cleanup(func() { os.Chmod(filepath.Join(root, "locked"), 0o755) })

	s := &Sizer{}
	total, err := s.DirSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(50), total)
}
