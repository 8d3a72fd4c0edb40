package sceneid

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v3"
)

// SentinelScene is a scene directory located on disk. Close removes the
// temporary directory when the scene had to be unzipped first.
type SentinelScene struct {
	Path    string
	Ident   string
	tempDir string
}

// Close removes any temporary extraction directory.
func (s *SentinelScene) Close() error {
	if s.tempDir == "" {
		return nil
	}
	return os.RemoveAll(s.tempDir)
}

// FindSentinelScene scans a directory for a Sentinel scene and unzips it
// if necessary. Works for Sentinel-1, -2 and -3 products. The caller
// must Close the returned scene.
func FindSentinelScene(dir string) (*SentinelScene, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("sceneid: read dir: %w", err)
	}
	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		ident := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if !IsSentinelScene(ident) {
			continue
		}
		if strings.HasSuffix(fullPath, ".zip") {
			return unpackScene(fullPath)
		}
		if entry.IsDir() {
			return &SentinelScene{Path: fullPath, Ident: ident}, nil
		}
	}
	return nil, fmt.Errorf("sceneid: no Sentinel scene in %s", dir)
}

func unpackScene(zipPath string) (*SentinelScene, error) {
	tempDir, err := os.MkdirTemp("", "sathub-scene-")
	if err != nil {
		return nil, fmt.Errorf("sceneid: create temp dir: %w", err)
	}
	if err := archiver.Unarchive(zipPath, tempDir); err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("sceneid: unzip %s: %w", zipPath, err)
	}
	scene, err := FindSentinelScene(tempDir)
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}
	scene.tempDir = tempDir
	return scene, nil
}
