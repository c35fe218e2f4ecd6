package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
}

func TestDiscoverPairs_MatchesByBaseName(t *testing.T) {
	masterDir := testutil.CreateTempDir(t)
	checkDir := testutil.CreateTempDir(t)

	writeFile(t, filepath.Join(masterDir, "bracket-v3.pdf"))
	writeFile(t, filepath.Join(checkDir, "bracket-v3.pdf"))

	pairs, err := discoverPairs(masterDir, checkDir, false, []string{"*.pdf"}, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, filepath.Join(masterDir, "bracket-v3.pdf"), pairs[0].MasterPath)
	assert.Equal(t, filepath.Join(checkDir, "bracket-v3.pdf"), pairs[0].CheckPath)
}

func TestDiscoverPairs_DifferentExtensionsStillPair(t *testing.T) {
	masterDir := testutil.CreateTempDir(t)
	checkDir := testutil.CreateTempDir(t)

	writeFile(t, filepath.Join(masterDir, "housing.pdf"))
	writeFile(t, filepath.Join(checkDir, "housing.png"))

	pairs, err := discoverPairs(masterDir, checkDir, false, []string{"*.pdf", "*.png"}, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
}

func TestDiscoverPairs_UnmatchedMasterIsError(t *testing.T) {
	masterDir := testutil.CreateTempDir(t)
	checkDir := testutil.CreateTempDir(t)

	writeFile(t, filepath.Join(masterDir, "orphan.pdf"))

	_, err := discoverPairs(masterDir, checkDir, false, []string{"*.pdf"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orphan.pdf")
}

func TestDiscoverPairs_Recursive(t *testing.T) {
	masterDir := testutil.CreateTempDir(t)
	checkDir := testutil.CreateTempDir(t)

	writeFile(t, filepath.Join(masterDir, "sub", "part.pdf"))
	writeFile(t, filepath.Join(checkDir, "sub", "part.pdf"))

	pairs, err := discoverPairs(masterDir, checkDir, true, []string{"*.pdf"}, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
}

func TestDiscoverPairs_NonRecursiveSkipsSubdirs(t *testing.T) {
	masterDir := testutil.CreateTempDir(t)
	checkDir := testutil.CreateTempDir(t)

	writeFile(t, filepath.Join(masterDir, "sub", "part.pdf"))
	writeFile(t, filepath.Join(checkDir, "sub", "part.pdf"))

	pairs, err := discoverPairs(masterDir, checkDir, false, []string{"*.pdf"}, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestDiscoverPairs_ExcludePattern(t *testing.T) {
	masterDir := testutil.CreateTempDir(t)
	checkDir := testutil.CreateTempDir(t)

	writeFile(t, filepath.Join(masterDir, "draft-part.pdf"))
	writeFile(t, filepath.Join(checkDir, "draft-part.pdf"))

	pairs, err := discoverPairs(masterDir, checkDir, false, []string{"*.pdf"}, []string{"draft-*"})
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestDiscoverPairs_NoFilesFound(t *testing.T) {
	masterDir := testutil.CreateTempDir(t)
	checkDir := testutil.CreateTempDir(t)

	pairs, err := discoverPairs(masterDir, checkDir, false, []string{"*.pdf"}, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestMatchesPatterns(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		patterns []string
		want     bool
	}{
		{"empty patterns", "test.png", nil, false},
		{"matching pattern", "test.png", []string{"*.png"}, true},
		{"non-matching pattern", "test.jpg", []string{"*.png"}, false},
		{"case sensitive", "test.PNG", []string{"*.png"}, false},
		{"one of several", "photo.jpg", []string{"*.png", "*.jpg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPatterns(tt.filename, tt.patterns))
		})
	}
}
