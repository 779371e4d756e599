package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".tif": true, ".tiff": true, ".bmp": true, ".webp": true,
}

// IsImage reports whether path has an image extension the decoder reads.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// InDirs reports whether path sits directly in one of dirs. Empty entries
// in dirs are ignored.
func InDirs(path string, dirs []string) bool {
	parent := absClean(filepath.Dir(path))
	for _, d := range dirs {
		if d != "" && absClean(d) == parent {
			return true
		}
	}
	return false
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// ExpandPaths replaces every directory in args with the images it holds,
// sorted by name. Files are kept as given. Images found in one of the exclude
// directories (where the scanner writes its own output) are skipped.
func ExpandPaths(args []string, exclude ...string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("list directory %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			path := filepath.Join(arg, e.Name())
			if !e.IsDir() && IsImage(e.Name()) && !InDirs(path, exclude) {
				found = append(found, path)
			}
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
