package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Arupreza/ScholarScout/internal/common"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32 // directory entries looked at
	Matched uint32 // PDF files returned
	Skipped uint32 // hidden entries, subdirectories, other extensions
}

// ListPapers returns the PDF files directly inside root (no recursion),
// sorted lexicographically by file name so repeated runs over an unchanged
// directory see the same order. Hidden files and subdirectories are skipped.
// A missing or non-directory root is a configuration error.
func ListPapers(root string) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, common.ConfigurationError("papers directory is required", nil)
	}

	st, err := os.Stat(root)
	if err != nil {
		return nil, stats, common.ConfigurationError(fmt.Sprintf("papers directory %q", root), err)
	}
	if !st.IsDir() {
		return nil, stats, common.ConfigurationError(fmt.Sprintf("papers directory %q is not a directory", root), nil)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, stats, common.ConfigurationError(fmt.Sprintf("reading papers directory %q", root), err)
	}

	var paths []string
	for _, e := range entries {
		stats.Scanned++
		name := e.Name()
		if IsHidden(name) || !isRegularFile(root, e) || !AllowedExt(filepath.Ext(name)) {
			stats.Skipped++
			continue
		}
		paths = append(paths, filepath.Join(root, name))
		stats.Matched++
	}

	// os.ReadDir already sorts by name; keep the guarantee explicit.
	sort.Strings(paths)
	return paths, stats, nil
}

// isRegularFile follows symlinks so a linked PDF is still picked up.
func isRegularFile(root string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	st, err := os.Stat(filepath.Join(root, e.Name()))
	return err == nil && st.Mode().IsRegular()
}
