package stat

import (
	"github.com/bkyoung/diffscope/internal/unidiff"
)

// FileStat summarizes the changes to one file.
type FileStat struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Hunks   int    `json:"hunks"`
}

// Report aggregates change statistics for one diff.
type Report struct {
	Repository   string     `json:"repository,omitempty"`
	BaseRef      string     `json:"baseRef,omitempty"`
	TargetRef    string     `json:"targetRef,omitempty"`
	Files        []FileStat `json:"files"`
	TotalAdded   int        `json:"totalAdded"`
	TotalRemoved int        `json:"totalRemoved"`
}

// BuildReport derives per-file and total change counts from a parsed diff.
// File order follows the diff's own section order.
func BuildReport(parsed unidiff.ParsedDiff) Report {
	report := Report{Files: make([]FileStat, 0, len(parsed.Files))}

	for _, path := range parsed.Files {
		fs := FileStat{
			Path:    path,
			Added:   len(parsed.AddedByFile[path]),
			Removed: len(parsed.RemovedByFile[path]),
			Hunks:   len(parsed.HunksByFile[path]),
		}
		report.Files = append(report.Files, fs)
		report.TotalAdded += fs.Added
		report.TotalRemoved += fs.Removed
	}

	return report
}
