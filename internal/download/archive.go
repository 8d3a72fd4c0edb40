package download

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"
)

// Pack zips the contents of rootDir into baseName+".zip" and returns the
// archive path. The directory entries sit at the archive root, matching
// the layout providers use for product bundles.
func Pack(baseName, rootDir string) (string, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rootDir, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("nothing to pack in %s", rootDir)
	}

	sources := make([]string, 0, len(entries))
	for _, entry := range entries {
		sources = append(sources, filepath.Join(rootDir, entry.Name()))
	}

	archivePath := baseName + ".zip"
	// A stale archive from an aborted run blocks re-archiving.
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale archive: %w", err)
	}
	if err := archiver.Archive(sources, archivePath); err != nil {
		return "", fmt.Errorf("pack %s: %w", archivePath, err)
	}
	return archivePath, nil
}

// Unpack extracts an archive into extractDir, or next to the archive
// when extractDir is empty.
func Unpack(filename, extractDir string) error {
	if extractDir == "" {
		extractDir = filepath.Dir(filename)
	}
	if err := archiver.Unarchive(filename, extractDir); err != nil {
		return fmt.Errorf("unpack %s: %w", filename, err)
	}
	return nil
}
