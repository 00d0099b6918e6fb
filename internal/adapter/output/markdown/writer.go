package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/diffscope/internal/usecase/stat"
)

type clock func() string

// Writer renders reports into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown artifact to disk and returns its path.
func (w *Writer) Write(ctx context.Context, report stat.Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("diffstat_%s_%s.md", sanitise(report.TargetRef), w.now())
	path := filepath.Join(outputDir, filename)

	content := buildContent(report)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(report stat.Report) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString("# Diff Summary\n\n")
	if report.Repository != "" {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", caser.String("repository"), report.Repository))
	}
	if report.BaseRef != "" {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", caser.String("base"), report.BaseRef))
	}
	if report.TargetRef != "" {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", caser.String("target"), report.TargetRef))
	}
	builder.WriteString(fmt.Sprintf("- Files changed: %d\n", len(report.Files)))
	builder.WriteString(fmt.Sprintf("- Additions: %d\n", report.TotalAdded))
	builder.WriteString(fmt.Sprintf("- Deletions: %d\n\n", report.TotalRemoved))

	if len(report.Files) == 0 {
		builder.WriteString("No changed files.\n")
		return builder.String()
	}

	builder.WriteString("## Files\n\n")
	builder.WriteString("| File | Added | Removed | Hunks |\n")
	builder.WriteString("|---|---:|---:|---:|\n")
	for _, fs := range report.Files {
		builder.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n", fs.Path, fs.Added, fs.Removed, fs.Hunks))
	}

	return builder.String()
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
