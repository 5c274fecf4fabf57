// Package scenescanner discovers the scene files available to the viewer.
package scenescanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SceneEntry represents a discoverable scene file
type SceneEntry struct {
	Name string // Display name (file name without extension)
	Path string // Path to the scene file
}

// ScanScenes lists the scene files in dir, one level deep, sorted by file
// name. Hidden files and non-JSON files are skipped.
func ScanScenes(dir string) ([]SceneEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scene directory %s", dir)
	}

	var scenes []SceneEntry
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}

		scenes = append(scenes, SceneEntry{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	return scenes, nil
}

// Find returns the index of the entry whose Path or Name matches target, or
// -1 when there is none.
func Find(scenes []SceneEntry, target string) int {
	clean := filepath.Clean(target)
	for i, s := range scenes {
		if s.Path == clean || s.Name == target {
			return i
		}
	}
	return -1
}
