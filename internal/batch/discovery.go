package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Pair is one discovered master/check drawing pair awaiting comparison.
type Pair struct {
	MasterPath string
	CheckPath  string
}

// discoverPairs pairs files in masterDir against files in checkDir by
// matching relative path with the extension stripped — e.g.
// masterDir/bracket-v3.pdf pairs with checkDir/bracket-v3.pdf. This is
// the batch convention drawcheck defines for itself (spec.md is silent
// on directory layout for multi-pair runs): two parallel directories,
// one drawing per shared base name.
func discoverPairs(masterDir, checkDir string, recursive bool, includePatterns, excludePatterns []string) ([]Pair, error) {
	masters, err := discoverFiles(masterDir, recursive, includePatterns, excludePatterns)
	if err != nil {
		return nil, fmt.Errorf("discover masters: %w", err)
	}
	checks, err := discoverFiles(checkDir, recursive, includePatterns, excludePatterns)
	if err != nil {
		return nil, fmt.Errorf("discover checks: %w", err)
	}

	checksByKey := make(map[string]string, len(checks))
	for _, c := range checks {
		checksByKey[pairKey(checkDir, c)] = c
	}

	var pairs []Pair
	var unmatched []string
	for _, m := range masters {
		key := pairKey(masterDir, m)
		if c, ok := checksByKey[key]; ok {
			pairs = append(pairs, Pair{MasterPath: m, CheckPath: c})
			delete(checksByKey, key)
		} else {
			unmatched = append(unmatched, m)
		}
	}

	if len(unmatched) > 0 {
		sort.Strings(unmatched)
		return pairs, fmt.Errorf("no matching check drawing for: %s", strings.Join(unmatched, ", "))
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].MasterPath < pairs[j].MasterPath })
	return pairs, nil
}

// pairKey derives the pairing key for a file: its path relative to root
// with the extension stripped, so subdirectory structure must match
// between the master and check trees.
func pairKey(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// discoverFiles finds all files under dir matching the given patterns.
func discoverFiles(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if (len(includePatterns) == 0 || matchesPatterns(path, includePatterns)) && !matchesPatterns(path, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

// matchesPatterns checks if a file path matches any of the given
// patterns. An empty pattern list means "match everything" for include
// and "match nothing" for exclude.
func matchesPatterns(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
