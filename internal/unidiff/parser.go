package unidiff

import (
	"regexp"
	"strconv"
	"strings"
)

// devNull is the path git uses for the missing side of a created or deleted file.
const devNull = "/dev/null"

// hunkHeaderRe matches "@@ -old[,oldLen] +new[,newLen] @@"; trailing text after
// the second @@ (usually the enclosing function name) is ignored.
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// LineChange records a single added or removed line.
type LineChange struct {
	Line int    // 1-based line number in the new file for additions, old file for removals
	Text string // Line content without the leading '+' or '-'
}

// Hunk represents one @@ header within a file section.
type Hunk struct {
	Header   string // The raw header line
	OldStart int
	OldLines *int // nil when the header omits the count (single-line range)
	NewStart int
	NewLines *int // nil when the header omits the count (single-line range)
}

// ParsedDiff is the result of parsing a unified diff.
//
// Files holds each identified path once, in the order its new-path header was
// first seen. Every identified file has an entry in all three maps, even when
// the corresponding slice is empty.
type ParsedDiff struct {
	Files         []string
	AddedByFile   map[string][]LineChange
	RemovedByFile map[string][]LineChange
	HunksByFile   map[string][]Hunk
}

// Parse parses unified diff text into a ParsedDiff.
//
// It accepts one or more concatenated file sections with the usual git
// conventions: an optional "diff --git" banner, optional rename and binary
// markers, "---"/"+++" path headers, and zero or more hunks. Parse never
// fails: any input, including empty strings and fragments with no headers,
// yields a structurally valid (possibly empty) result.
func Parse(text string) ParsedDiff {
	st := parseState{out: newParsedDiff()}
	for _, line := range splitLines(text) {
		st.consume(line)
	}
	return st.out
}

// parseState is the accumulator threaded through a single parse call: the
// active file (identity of the current section) and the two running line
// counters. No state survives the call.
type parseState struct {
	active    string
	hasActive bool
	oldLine   int
	newLine   int
	out       ParsedDiff
}

func newParsedDiff() ParsedDiff {
	return ParsedDiff{
		Files:         []string{},
		AddedByFile:   map[string][]LineChange{},
		RemovedByFile: map[string][]LineChange{},
		HunksByFile:   map[string][]Hunk{},
	}
}

// splitLines collapses CRLF pairs to LF before splitting. Lone '\r' is left alone.
func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// consume processes one line, most specific prefix first.
func (st *parseState) consume(line string) {
	switch {
	case strings.HasPrefix(line, "diff --git "):
		// New section: identity must be re-established by a +++ header.
		st.hasActive = false
		return
	case strings.HasPrefix(line, "rename from "), strings.HasPrefix(line, "rename to "):
		// Informational only; identity comes from the subsequent +++ header.
		return
	case strings.HasPrefix(line, "Binary files "):
		// Binary sections never register a file.
		return
	case strings.HasPrefix(line, "--- "):
		// The old path is never used as a map key.
		return
	case strings.HasPrefix(line, "+++ "):
		st.setNewPath(line)
		return
	}

	if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
		st.startHunk(line, m)
		return
	}

	st.classify(line)
}

// setNewPath establishes the section's identity from a "+++ " header and
// registers the file. A header pointing at /dev/null marks a deleted file:
// the section must not register anything, so the active file is cleared.
func (st *parseState) setNewPath(line string) {
	path, ok := newPathTarget(line)
	if !ok {
		st.hasActive = false
		return
	}
	st.active = path
	st.hasActive = true
	st.register(path)
}

// register adds a path to the registry with empty collections. Re-identifying
// a known path keeps its existing collections and its original position.
func (st *parseState) register(path string) {
	if _, seen := st.out.AddedByFile[path]; seen {
		return
	}
	st.out.Files = append(st.out.Files, path)
	st.out.AddedByFile[path] = []LineChange{}
	st.out.RemovedByFile[path] = []LineChange{}
	st.out.HunksByFile[path] = []Hunk{}
}

// startHunk resets the line counters from a hunk header and records the hunk
// against the active file. Without an active file the hunk is dropped, but
// the counters still reset so later content lines stay consistent.
func (st *parseState) startHunk(header string, m []string) {
	oldStart, _ := strconv.Atoi(m[1])
	newStart, _ := strconv.Atoi(m[3])
	st.oldLine = oldStart
	st.newLine = newStart

	if !st.hasActive {
		return
	}

	h := Hunk{Header: header, OldStart: oldStart, NewStart: newStart}
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		h.OldLines = IntPtr(n)
	}
	if m[4] != "" {
		n, _ := strconv.Atoi(m[4])
		h.NewLines = IntPtr(n)
	}
	st.out.HunksByFile[st.active] = append(st.out.HunksByFile[st.active], h)
}

// classify handles content lines: additions, removals, and context.
//
// Content lines seen before any hunk header use the zero-initialized
// counters, so a fragment with no @@ header records its first change at
// line 0. That mirrors the permissive handling of pasted diff snippets and
// is asserted by tests; it is not line-number inference.
func (st *parseState) classify(line string) {
	if !st.hasActive {
		return
	}
	switch {
	case strings.HasPrefix(line, "+"):
		st.out.AddedByFile[st.active] = append(st.out.AddedByFile[st.active], LineChange{
			Line: st.newLine,
			Text: line[1:],
		})
		st.newLine++
	case strings.HasPrefix(line, "-"):
		st.out.RemovedByFile[st.active] = append(st.out.RemovedByFile[st.active], LineChange{
			Line: st.oldLine,
			Text: line[1:],
		})
		st.oldLine++
	default:
		// Context or blank: both sides advance.
		st.oldLine++
		st.newLine++
	}
}

// newPathTarget extracts the registry path from a "+++ " header line.
// ok is false when the header points at the deleted-file sentinel.
func newPathTarget(line string) (path string, ok bool) {
	path = strings.TrimPrefix(line, "+++ ")
	if strings.HasSuffix(path, devNull) {
		return "", false
	}
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		path = path[2:]
	}
	return strings.TrimRight(path, " \t"), true
}

// IntPtr returns a pointer to the given int value.
// Exported for use in tests across packages.
func IntPtr(n int) *int {
	return &n
}
