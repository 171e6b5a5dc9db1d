package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arupreza/ScholarScout/internal/common"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestListPapers(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b_paper.pdf"))
	touch(t, filepath.Join(dir, "a_paper.PDF"))
	touch(t, filepath.Join(dir, "c_paper.pdf"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, ".hidden.pdf"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	touch(t, filepath.Join(dir, "nested", "deep.pdf"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.pdf"), 0o755))

	paths, stats, err := ListPapers(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a_paper.PDF"),
		filepath.Join(dir, "b_paper.pdf"),
		filepath.Join(dir, "c_paper.pdf"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(7), stats.Scanned)
	assert.Equal(t, uint32(4), stats.Skipped)
}

func TestListPapers_EmptyDirectory(t *testing.T) {
	paths, stats, err := ListPapers(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.Zero(t, stats.Matched)
}

func TestListPapers_StableOrder(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"z.pdf", "m.pdf", "a.pdf"} {
		touch(t, filepath.Join(dir, n))
	}
	first, _, err := ListPapers(dir)
	require.NoError(t, err)
	second, _, err := ListPapers(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListPapers_InvalidRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.pdf")
	touch(t, file)

	tests := []struct {
		name string
		root string
	}{
		{name: "empty", root: " "},
		{name: "missing", root: filepath.Join(t.TempDir(), "nope")},
		{name: "not a directory", root: file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ListPapers(tt.root)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrConfiguration)
		})
	}
}
