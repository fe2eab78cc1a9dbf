package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/penwyp/go-eld-planner/internal/util"
)

// FileScanner expands glob patterns into trip data files
type FileScanner struct {
	patterns []string
}

// NewFileScanner creates a scanner for the given patterns. A pattern naming
// a directory is searched recursively for .json files.
func NewFileScanner(patterns ...string) *FileScanner {
	return &FileScanner{patterns: patterns}
}

// Patterns returns the normalized glob patterns
func (s *FileScanner) Patterns() []string {
	out := make([]string, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, normalize(p))
	}
	return out
}

func normalize(pattern string) string {
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		return filepath.Join(pattern, "**", "*")
	}
	return pattern
}

// Scan returns the sorted, de-duplicated .json files matched by all patterns
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range s.Patterns() {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !strings.EqualFold(filepath.Ext(m), ".json") {
				continue
			}
			abs, err := filepath.Abs(m)
			if err != nil {
				abs = m
			}
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			files = append(files, abs)
		}
	}

	sort.Strings(files)
	util.LogDebugf("Scan finished: %d trip files, duration %v", len(files), time.Since(start))
	return files, nil
}

// Dirs returns the directories holding the scanned files and the literal
// directory prefix of each pattern, for watching.
func (s *FileScanner) Dirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return
		}
		seen[abs] = struct{}{}
		dirs = append(dirs, abs)
	}

	for _, pattern := range s.Patterns() {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		add(filepath.FromSlash(base))
	}
	if files, err := s.Scan(); err == nil {
		for _, f := range files {
			add(filepath.Dir(f))
		}
	}

	sort.Strings(dirs)
	return dirs
}
