package stat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bkyoung/diffscope/internal/store"
	"github.com/bkyoung/diffscope/internal/unidiff"
)

// DiffSource produces unified diff text for a pair of refs.
// The parser itself never performs I/O; acquisition belongs to the caller.
type DiffSource interface {
	DiffText(ctx context.Context, baseRef, targetRef string, includeUncommitted bool) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
}

// Writer persists a report artifact and returns the written path.
type Writer interface {
	Write(ctx context.Context, report Report, outputDir string) (string, error)
}

// Store persists run history. Narrowed from store.Store to what the
// summarizer needs.
type Store interface {
	CreateRun(ctx context.Context, run store.Run) error
	SaveFileStats(ctx context.Context, runID string, stats []store.FileStat) error
}

// Logger provides structured logging for the summarizer.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Request describes one summarization.
//
// When DiffText is set it is used as-is; otherwise the diff is acquired from
// the DiffSource using BaseRef and TargetRef.
type Request struct {
	DiffText           string
	BaseRef            string
	TargetRef          string
	Repository         string
	IncludeUncommitted bool
	OutputDir          string
}

// Summarizer turns a diff into a Report and fans it out to writers and the
// history store.
type Summarizer struct {
	source  DiffSource
	writers []Writer
	store   Store
	logger  Logger
	clock   func() time.Time
}

// Deps captures the collaborators for a Summarizer. Source, Writers, Store,
// and Logger are all optional.
type Deps struct {
	Source  DiffSource
	Writers []Writer
	Store   Store
	Logger  Logger
	Clock   func() time.Time
}

// NewSummarizer constructs a Summarizer.
func NewSummarizer(deps Deps) *Summarizer {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Summarizer{
		source:  deps.Source,
		writers: deps.Writers,
		store:   deps.Store,
		logger:  deps.Logger,
		clock:   clock,
	}
}

// Summarize parses the requested diff and returns its Report. Artifact
// writing and history persistence are best-effort: failures there are logged
// as warnings and do not fail the summarization.
func (s *Summarizer) Summarize(ctx context.Context, req Request) (Report, error) {
	text := req.DiffText
	if text == "" && (req.BaseRef != "" || req.TargetRef != "") {
		if s.source == nil {
			return Report{}, fmt.Errorf("no diff text given and no diff source configured")
		}
		acquired, err := s.source.DiffText(ctx, req.BaseRef, req.TargetRef, req.IncludeUncommitted)
		if err != nil {
			return Report{}, fmt.Errorf("acquire diff: %w", err)
		}
		text = acquired
	}

	report := BuildReport(unidiff.Parse(text))
	report.Repository = req.Repository
	report.BaseRef = req.BaseRef
	report.TargetRef = req.TargetRef

	if req.OutputDir != "" {
		for _, w := range s.writers {
			path, err := w.Write(ctx, report, req.OutputDir)
			if err != nil {
				s.warn(ctx, "failed to write report artifact", map[string]interface{}{"error": err.Error()})
				continue
			}
			s.info(ctx, "wrote report artifact", map[string]interface{}{"path": path})
		}
	}

	if s.store != nil {
		s.saveRun(ctx, req, report)
	}

	return report, nil
}

// CurrentBranch resolves the checked-out branch through the diff source.
func (s *Summarizer) CurrentBranch(ctx context.Context) (string, error) {
	if s.source == nil {
		return "", fmt.Errorf("no diff source configured")
	}
	return s.source.CurrentBranch(ctx)
}

func (s *Summarizer) saveRun(ctx context.Context, req Request, report Report) {
	now := s.clock()
	run := store.Run{
		RunID:        runID(req, now),
		Timestamp:    now,
		Repository:   req.Repository,
		BaseRef:      req.BaseRef,
		TargetRef:    req.TargetRef,
		FilesChanged: len(report.Files),
		Additions:    report.TotalAdded,
		Deletions:    report.TotalRemoved,
	}

	if err := s.store.CreateRun(ctx, run); err != nil {
		s.warn(ctx, "failed to save run", map[string]interface{}{"error": err.Error()})
		return
	}

	stats := make([]store.FileStat, 0, len(report.Files))
	for _, fs := range report.Files {
		stats = append(stats, store.FileStat{
			Path:    fs.Path,
			Added:   fs.Added,
			Removed: fs.Removed,
			Hunks:   fs.Hunks,
		})
	}
	if err := s.store.SaveFileStats(ctx, run.RunID, stats); err != nil {
		s.warn(ctx, "failed to save file stats", map[string]interface{}{
			"runId": run.RunID,
			"error": err.Error(),
		})
	}
}

// runID derives a deterministic identifier from the request and timestamp.
func runID(req Request, now time.Time) string {
	payload := fmt.Sprintf("%s|%s|%s|%d",
		req.Repository,
		req.BaseRef,
		req.TargetRef,
		now.UnixNano(),
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:8])
}

func (s *Summarizer) info(ctx context.Context, msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.LogInfo(ctx, msg, fields)
	}
}

func (s *Summarizer) warn(ctx context.Context, msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.LogWarning(ctx, msg, fields)
	}
}
