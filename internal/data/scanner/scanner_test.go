package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
}

func TestFileScanner_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"))
	writeFile(t, filepath.Join(dir, "nested", "deep", "b.JSON"))
	writeFile(t, filepath.Join(dir, "notes.txt"))

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "directory is recursive",
			patterns: []string{dir},
			want:     []string{"a.json", filepath.Join("nested", "deep", "b.JSON")},
		},
		{
			name:     "top level glob",
			patterns: []string{filepath.Join(dir, "*.json")},
			want:     []string{"a.json"},
		},
		{
			name:     "overlapping patterns are de-duplicated",
			patterns: []string{filepath.Join(dir, "*.json"), filepath.Join(dir, "**", "*.json")},
			want:     []string{"a.json"},
		},
		{
			name:     "no matches",
			patterns: []string{filepath.Join(dir, "missing", "*.json")},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := NewFileScanner(tt.patterns...).Scan()
			require.NoError(t, err)

			var rel []string
			for _, f := range files {
				r, err := filepath.Rel(dir, f)
				require.NoError(t, err)
				rel = append(rel, r)
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestFileScanner_DirectoryMatchesExtensionAnyCase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "TRIP.JSON"))
	writeFile(t, filepath.Join(dir, "2024", "May.Json"))
	writeFile(t, filepath.Join(dir, "2024", "readme.md"))

	files, err := NewFileScanner(dir).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2024", "May.Json"),
		filepath.Join(dir, "TRIP.JSON"),
	}, files)
}

func TestFileScanner_Dirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "trips", "one.json"))
	writeFile(t, filepath.Join(dir, "trips", "2024", "two.json"))

	dirs := NewFileScanner(filepath.Join(dir, "trips", "**", "*.json")).Dirs()

	assert.Equal(t, []string{
		filepath.Join(dir, "trips"),
		filepath.Join(dir, "trips", "2024"),
	}, dirs)
}
