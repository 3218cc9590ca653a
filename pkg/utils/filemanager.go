// =============================================================================
// Upload Reconciler - File Manager Utility
// =============================================================================
//
// This module provides the filesystem operations the reconciler builds on:
//   - Existence checks
//   - Single-level "mkdir if absent"
//   - File and directory tree copies (symlinks followed)
//   - Tree removal
//
// None of these functions log. Callers decide how a failure is reported.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// =============================================================================
// EXISTENCE AND DIRECTORIES
// =============================================================================

// FileExists reports whether path names an existing file or directory.
// Any stat failure, including a dangling symlink, counts as absent.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// EnsureDir creates the directory at path unless something already exists
// there. Parents are not created.
//
// RETURNS:
//   - true if the directory was created by this call.
//   - An error if creation failed for a reason other than existence.
func EnsureDir(path string) (bool, error) {
	err := os.Mkdir(path, 0o755)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	return false, err
}

// =============================================================================
// COPYING
// =============================================================================

// CopyFile copies the regular file src to dst with the given mode.
func CopyFile(src, dst string, mode os.FileMode) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Close()
}

// CopyTree recursively copies the directory src to dst, which must not
// exist. Symlinks are followed, src itself included: dst always receives
// real directories and copies of the files the links point to. File and
// directory permissions are preserved.
//
// RETURNS:
//   - An error naming the first path that could not be copied, such as a
//     dangling link or a link loop. Whatever was copied before the failure
//     is left in place.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("copy %s: not a directory", src)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("copy %s: %s: %w", src, dst, fs.ErrExist)
	}

	return copyDir(src, dst, info, make(map[string]bool))
}

// copyDir copies one directory level. ancestors holds the resolved paths of
// the directories being copied above src.
func copyDir(src, dst string, info fs.FileInfo, ancestors map[string]bool) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if ancestors[resolved] {
		return fmt.Errorf("copy %s: symlink loop back to %s", src, resolved)
	}
	ancestors[resolved] = true
	defer delete(ancestors, resolved)

	if err := os.Mkdir(dst, info.Mode().Perm()|0o700); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	for _, entry := range entries {
		path := filepath.Join(src, entry.Name())
		target := filepath.Join(dst, entry.Name())

		// Stat, not Lstat: links are copied as what they point to.
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("copy %s: %w", path, err)
		}

		switch {
		case info.IsDir():
			if err := copyDir(path, target, info, ancestors); err != nil {
				return err
			}

		case info.Mode().IsRegular():
			if err := CopyFile(path, target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("copy %s: %w", path, err)
			}

		default:
			return fmt.Errorf("copy %s: unsupported file type %s", path, info.Mode().Type())
		}
	}
	return nil
}

// =============================================================================
// REMOVAL
// =============================================================================

// RemoveTree deletes path and everything below it. Unlike os.RemoveAll it
// fails when path does not exist, so a removal of something never copied
// is reported.
func RemoveTree(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return err
	}
	return os.RemoveAll(path)
}
