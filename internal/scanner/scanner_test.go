package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

// buildCorpus lays out a nested tree with XML and non-XML files.
func buildCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	layout := map[string][]string{
		"20140820/A":    {"EP-100-A1.xml", "EP-100-B1.xml", "notes.txt"},
		"20140820/B":    {"EP-200-A1.xml"},
		"20150101/A":    {"EP-300-A1.xml", "EP-300-A2.xml"},
		"20150101/A/00": {"EP-400-B1.xml"},
	}
	for dir, files := range layout {
		full := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(full, 0o755))
		for _, name := range files {
			require.NoError(t, os.WriteFile(filepath.Join(full, name), []byte("<patent-document/>"), 0o644))
		}
	}
	return root
}

func TestScan_FindsAllXMLFilesSorted(t *testing.T) {
	t.Parallel()

	root := buildCorpus(t)
	files, folderOrder, stats, err := New(logging.NewNopLogger()).Scan(root, 4)
	require.NoError(t, err)

	assert.Len(t, files, 6)
	assert.True(t, sort.StringsAreSorted(files), "file list must be sorted")
	for _, f := range files {
		assert.Equal(t, ".xml", filepath.Ext(f))
	}

	assert.Equal(t, 6, stats.XMLFiles)
	assert.Equal(t, 7, stats.TotalFiles, "non-XML files counted in totals")
	assert.Greater(t, stats.TotalDirectories, 0)

	// Folder order follows the lexicographic directory sort.
	assert.Contains(t, folderOrder, ".")
	assert.Contains(t, folderOrder, filepath.Join("20140820", "A"))
	assert.Less(t, folderOrder[filepath.Join("20140820", "A")], folderOrder[filepath.Join("20150101", "A")])
}

func TestScan_DeterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	root := buildCorpus(t)
	s := New(logging.NewNopLogger())

	files1, order1, _, err := s.Scan(root, 1)
	require.NoError(t, err)

	files8, order8, _, err := s.Scan(root, 8)
	require.NoError(t, err)

	assert.Equal(t, files1, files8, "scheduling must not affect the file list")
	assert.Equal(t, order1, order8, "scheduling must not affect the folder order")
}

func TestScan_MissingRootIsFatal(t *testing.T) {
	t.Parallel()

	_, _, _, err := New(logging.NewNopLogger()).Scan("/nonexistent/corpus", 2)
	assert.Error(t, err)
}

func TestScan_EmptyRoot(t *testing.T) {
	t.Parallel()

	files, folderOrder, stats, err := New(logging.NewNopLogger()).Scan(t.TempDir(), 2)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Len(t, folderOrder, 1, "the root still owns an index")
	assert.Equal(t, 0, stats.XMLFiles)
}

func TestScan_FlatRootWithoutSubdirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for i := 0; i < 3; i++ {
		name := filepath.Join(root, fmt.Sprintf("EP-%d-A1.xml", i))
		require.NoError(t, os.WriteFile(name, []byte("<patent-document/>"), 0o644))
	}

	files, _, _, err := New(logging.NewNopLogger()).Scan(root, 2)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}
