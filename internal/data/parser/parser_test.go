package parser

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []int
		wantErr bool
	}{
		{name: "single object", input: `{"id": 3, "current_location": "Reno, NV"}`, wantIDs: []int{3}},
		{name: "array", input: ` [{"id": 1}, {"id": 2}] `, wantIDs: []int{1, 2}},
		{name: "empty array", input: `[]`, wantIDs: []int{}},
		{name: "blank", input: "  \n", wantErr: true},
		{name: "malformed", input: `{"id": `, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trips, err := Parse([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]int, 0, len(trips))
			for _, trip := range trips {
				ids = append(ids, trip.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestParser_ParseFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"id": 1}, {"id": 2}]`), 0644))
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0644))

	p := NewParser(2)
	var files []string
	var ids []int
	var failures int
	for result := range p.ParseFiles([]string{good, bad, filepath.Join(dir, "missing.json")}) {
		files = append(files, result.File)
		if result.Error != nil {
			failures++
			continue
		}
		for _, trip := range result.Trips {
			ids = append(ids, trip.ID)
		}
	}

	sort.Ints(ids)
	assert.Len(t, files, 3)
	assert.Equal(t, []int{1, 2}, ids)
	assert.Equal(t, 2, failures)
}
