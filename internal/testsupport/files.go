// =============================================================================
// Upload Reconciler - Test Fixtures
// =============================================================================
//
// This module builds on-disk fixtures for package tests: plain files, ZIP
// archives and upload-bank bundles laid out as uploads/<id>/<id>.zip.
//
// =============================================================================

package testsupport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteZip writes a ZIP archive at path holding the given members. Names
// ending in "/" become directory entries.
func WriteZip(t testing.TB, path string, members map[string]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(members[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close %s: %v", path, err)
	}
}

// UploadBundle creates uploads/<id>/<id>.zip with the given members and
// returns the archive path.
func UploadBundle(t testing.TB, uploads, id string, members map[string]string) string {
	t.Helper()

	path := filepath.Join(uploads, id, id+".zip")
	WriteZip(t, path, members)
	return path
}

// ReadFile returns the content of path, failing the test if it is unreadable.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
