package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/upload-reconciler/internal/testsupport"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "12345_19-09")

	created, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureDir(dir)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = EnsureDir(filepath.Join(t.TempDir(), "a", "b"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCopyTree(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	testsupport.WriteFile(t, filepath.Join(src, "a.zip"), "zip-bytes")
	testsupport.WriteFile(t, filepath.Join(src, "nested", "b.txt"), "bee")

	dst := filepath.Join(base, "dst")
	require.NoError(t, CopyTree(src, dst))

	assert.Equal(t, "zip-bytes", testsupport.ReadFile(t, filepath.Join(dst, "a.zip")))
	assert.Equal(t, "bee", testsupport.ReadFile(t, filepath.Join(dst, "nested", "b.txt")))
}

func TestCopyTreeFollowsSymlinks(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, base string) string // returns the source
		check func(t *testing.T, base, dst string)
	}{
		{
			name: "symlinked root",
			setup: func(t *testing.T, base string) string {
				testsupport.WriteFile(t, filepath.Join(base, "store", "bundle", "a.zip"), "zip-bytes")
				link := filepath.Join(base, "bundle")
				require.NoError(t, os.Symlink(filepath.Join(base, "store", "bundle"), link))
				return link
			},
			check: func(t *testing.T, base, dst string) {
				info, err := os.Lstat(dst)
				require.NoError(t, err)
				assert.True(t, info.IsDir(), "target must be a real directory, got %s", info.Mode())
				assert.Equal(t, "zip-bytes", testsupport.ReadFile(t, filepath.Join(dst, "a.zip")))

				// Writing below the copy leaves the linked source alone.
				testsupport.WriteFile(t, filepath.Join(dst, "extra.txt"), "x")
				entries, err := os.ReadDir(filepath.Join(base, "store", "bundle"))
				require.NoError(t, err)
				assert.Len(t, entries, 1)
			},
		},
		{
			name: "inner symlink to file",
			setup: func(t *testing.T, base string) string {
				src := filepath.Join(base, "src")
				testsupport.WriteFile(t, filepath.Join(src, "a.zip"), "zip-bytes")
				require.NoError(t, os.Symlink("a.zip", filepath.Join(src, "link")))
				return src
			},
			check: func(t *testing.T, base, dst string) {
				info, err := os.Lstat(filepath.Join(dst, "link"))
				require.NoError(t, err)
				assert.True(t, info.Mode().IsRegular())
				assert.Equal(t, "zip-bytes", testsupport.ReadFile(t, filepath.Join(dst, "link")))
			},
		},
		{
			name: "inner symlink to directory",
			setup: func(t *testing.T, base string) string {
				src := filepath.Join(base, "src")
				testsupport.WriteFile(t, filepath.Join(base, "shared", "c.txt"), "sea")
				require.NoError(t, os.MkdirAll(src, 0o755))
				require.NoError(t, os.Symlink(filepath.Join(base, "shared"), filepath.Join(src, "shared")))
				return src
			},
			check: func(t *testing.T, base, dst string) {
				info, err := os.Lstat(filepath.Join(dst, "shared"))
				require.NoError(t, err)
				assert.True(t, info.IsDir())
				assert.Equal(t, "sea", testsupport.ReadFile(t, filepath.Join(dst, "shared", "c.txt")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			src := tt.setup(t, base)
			dst := filepath.Join(base, "dst")

			require.NoError(t, CopyTree(src, dst))
			tt.check(t, base, dst)
		})
	}
}

func TestCopyTreeRejectsBrokenLinks(t *testing.T) {
	tests := map[string]func(t *testing.T, src string){
		"dangling link": func(t *testing.T, src string) {
			require.NoError(t, os.Symlink("gone.zip", filepath.Join(src, "link")))
		},
		"link loop": func(t *testing.T, src string) {
			require.NoError(t, os.Symlink(".", filepath.Join(src, "self")))
		},
	}

	for name, setup := range tests {
		t.Run(name, func(t *testing.T) {
			base := t.TempDir()
			src := filepath.Join(base, "src")
			testsupport.WriteFile(t, filepath.Join(src, "a.zip"), "x")
			setup(t, src)

			assert.Error(t, CopyTree(src, filepath.Join(base, "dst")))
		})
	}
}

func TestCopyTreeRefusesExistingTarget(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	testsupport.WriteFile(t, filepath.Join(src, "a.zip"), "x")
	dst := filepath.Join(base, "dst")
	require.NoError(t, os.Mkdir(dst, 0o755))

	err := CopyTree(src, dst)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestCopyTreeRejectsFileSource(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "file")
	testsupport.WriteFile(t, src, "x")

	assert.Error(t, CopyTree(src, filepath.Join(base, "dst")))
}

func TestRemoveTree(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "victim")
	testsupport.WriteFile(t, filepath.Join(dir, "x", "y"), "z")

	require.NoError(t, RemoveTree(dir))
	assert.False(t, FileExists(dir))

	assert.ErrorIs(t, RemoveTree(dir), fs.ErrNotExist)
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	testsupport.WriteZip(t, archive, map[string]string{
		"main.c":          "int main(){}",
		"docs/":           "",
		"docs/readme.txt": "hi",
	})

	n, err := ExtractZip(archive, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "int main(){}", testsupport.ReadFile(t, filepath.Join(dir, "main.c")))
	assert.Equal(t, "hi", testsupport.ReadFile(t, filepath.Join(dir, "docs", "readme.txt")))
	assert.True(t, FileExists(archive), "archive stays next to its contents")
}

func TestExtractZipOverwrites(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "main.c"), "old")
	archive := filepath.Join(dir, "bundle.zip")
	testsupport.WriteZip(t, archive, map[string]string{"main.c": "new"})

	_, err := ExtractZip(archive, dir)
	require.NoError(t, err)
	assert.Equal(t, "new", testsupport.ReadFile(t, filepath.Join(dir, "main.c")))
}

func TestExtractZipRejectsEscapingMembers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "target")
	archive := filepath.Join(dir, "evil.zip")
	testsupport.WriteZip(t, archive, map[string]string{"../escape.txt": "x"})

	_, err := ExtractZip(archive, dir)
	assert.Error(t, err)
	assert.False(t, FileExists(filepath.Join(filepath.Dir(dir), "escape.txt")))
}

func TestExtractZipCorrupt(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "broken.zip")
	testsupport.WriteFile(t, archive, "this is not a zip")

	_, err := ExtractZip(archive, dir)
	assert.ErrorContains(t, err, "open archive")
}
