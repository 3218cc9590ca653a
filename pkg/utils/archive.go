// =============================================================================
// Upload Reconciler - Archive Extraction
// =============================================================================
//
// This module unpacks a bundle's ZIP archive next to the archive itself.
//
// SAFETY:
//   Member names are resolved below the destination; absolute names and
//   names climbing out with ".." are rejected. Every member and the archive
//   are closed on all paths.
//
// =============================================================================

package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractZip extracts every member of the ZIP archive at archivePath into
// dest. Existing files are overwritten. Members whose names would land
// outside dest are rejected.
//
// RETURNS:
//   - The number of members extracted.
//   - An error for an unreadable archive or the first member that fails.
func ExtractZip(archivePath, dest string) (int, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	extracted := 0
	for _, member := range zr.File {
		if err := extractMember(member, dest); err != nil {
			return extracted, err
		}
		extracted++
	}
	return extracted, nil
}

func extractMember(member *zip.File, dest string) error {
	target, err := memberPath(dest, member.Name)
	if err != nil {
		return err
	}

	if member.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	mode := member.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", member.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extract member %s: %w", member.Name, err)
	}
	return out.Close()
}

// memberPath resolves a member name below dest.
func memberPath(dest, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("illegal member path %q", name)
	}
	return filepath.Join(dest, clean), nil
}
