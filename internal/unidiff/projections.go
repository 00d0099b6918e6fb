package unidiff

import "strings"

// ChangedFiles lists the files a diff touches, deduplicated in first-seen
// order. Only new-path headers are inspected, with the same normalization,
// prefix stripping, and deleted-file exclusion as Parse, so the result always
// matches ParsedDiff.Files for the same input.
func ChangedFiles(text string) []string {
	files := []string{}
	seen := map[string]bool{}
	for _, line := range splitLines(text) {
		if !strings.HasPrefix(line, "+++ ") {
			continue
		}
		path, ok := newPathTarget(line)
		if !ok || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files
}

// AddedLines returns the added lines of each changed file, keyed by path.
func AddedLines(text string) map[string][]LineChange {
	return Parse(text).AddedByFile
}

// RemovedLines returns the removed lines of each changed file, keyed by path.
func RemovedLines(text string) map[string][]LineChange {
	return Parse(text).RemovedByFile
}
