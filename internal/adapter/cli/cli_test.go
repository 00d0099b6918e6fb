package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bkyoung/diffscope/internal/adapter/cli"
	"github.com/bkyoung/diffscope/internal/unidiff"
	"github.com/bkyoung/diffscope/internal/usecase/stat"
)

const samplePatch = `diff --git a/src/file.ts b/src/file.ts
--- a/src/file.ts
+++ b/src/file.ts
@@ -1,3 +1,4 @@
 line1
-line2
+new line
+another line
 line3
`

type statStub struct {
	request stat.Request
	err     error
	current string
}

func (s *statStub) Summarize(ctx context.Context, req stat.Request) (stat.Report, error) {
	s.request = req
	if s.err != nil {
		return stat.Report{}, s.err
	}
	report := stat.BuildReport(unidiff.Parse(req.DiffText))
	report.BaseRef = req.BaseRef
	report.TargetRef = req.TargetRef
	return report, nil
}

func (s *statStub) CurrentBranch(ctx context.Context) (string, error) {
	if s.current == "" {
		return "", errors.New("no branch")
	}
	return s.current, nil
}

func newRoot(stub *statStub, out io.Writer) *cobra.Command {
	return cli.NewRootCommand(cli.Dependencies{
		Summarizer:       stub,
		Args:             cli.Arguments{OutWriter: out, ErrWriter: io.Discard},
		DefaultOutputDir: "build",
		Version:          "v1.2.3",
	})
}

func writeDiffFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "change.diff")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write diff file: %v", err)
	}
	return path
}

func TestStatCommandReadsDiffFile(t *testing.T) {
	stub := &statStub{}
	var out bytes.Buffer
	root := newRoot(stub, &out)

	path := writeDiffFile(t, samplePatch)
	root.SetArgs([]string{"stat", path, "--no-color"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.request.DiffText != samplePatch {
		t.Fatalf("expected diff text from file, got %q", stub.request.DiffText)
	}
	if !strings.Contains(out.String(), "1 files changed, 2 insertions(+), 1 deletions(-)") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestStatCommandReadsStdin(t *testing.T) {
	stub := &statStub{}
	var out bytes.Buffer
	root := newRoot(stub, &out)

	root.SetIn(strings.NewReader(samplePatch))
	root.SetArgs([]string{"stat", "--no-color"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.request.DiffText != samplePatch {
		t.Fatalf("expected diff text from stdin, got %q", stub.request.DiffText)
	}
}

func TestStatCommandUsesRefs(t *testing.T) {
	stub := &statStub{}
	root := newRoot(stub, io.Discard)

	root.SetArgs([]string{"stat", "--base", "master", "--target", "feature"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.request.BaseRef != "master" || stub.request.TargetRef != "feature" {
		t.Fatalf("expected refs master/feature, got %s/%s", stub.request.BaseRef, stub.request.TargetRef)
	}
	if stub.request.DiffText != "" {
		t.Fatalf("expected no inline diff text, got %q", stub.request.DiffText)
	}
}

func TestStatCommandDetectsTarget(t *testing.T) {
	stub := &statStub{current: "detected"}
	root := newRoot(stub, io.Discard)

	root.SetArgs([]string{"stat", "--base", "master"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.request.TargetRef != "detected" {
		t.Fatalf("expected detected target, got %s", stub.request.TargetRef)
	}
}

func TestStatCommandSaveUsesDefaultOutputDir(t *testing.T) {
	stub := &statStub{}
	root := newRoot(stub, io.Discard)

	path := writeDiffFile(t, samplePatch)
	root.SetArgs([]string{"stat", path, "--save"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.request.OutputDir != "build" {
		t.Fatalf("expected default output dir build, got %s", stub.request.OutputDir)
	}
}

func TestStatCommandWithoutSaveSkipsArtifacts(t *testing.T) {
	stub := &statStub{}
	root := newRoot(stub, io.Discard)

	path := writeDiffFile(t, samplePatch)
	root.SetArgs([]string{"stat", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.request.OutputDir != "" {
		t.Fatalf("expected empty output dir, got %s", stub.request.OutputDir)
	}
}

func TestFilesCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRoot(&statStub{}, &out)

	root.SetIn(strings.NewReader(samplePatch))
	root.SetArgs([]string{"files"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if strings.TrimSpace(out.String()) != "src/file.ts" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestLinesCommandAddedOnly(t *testing.T) {
	var out bytes.Buffer
	root := newRoot(&statStub{}, &out)

	path := writeDiffFile(t, samplePatch)
	root.SetArgs([]string{"lines", path, "--added"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "src/file.ts:2: +new line") || !strings.Contains(got, "src/file.ts:3: +another line") {
		t.Fatalf("missing added lines in output: %s", got)
	}
	if strings.Contains(got, "-line2") {
		t.Fatalf("removed line leaked into --added output: %s", got)
	}
}

func TestLinesCommandMutuallyExclusiveFlags(t *testing.T) {
	root := newRoot(&statStub{}, io.Discard)

	path := writeDiffFile(t, samplePatch)
	root.SetArgs([]string{"lines", path, "--added", "--removed"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for mutually exclusive flags")
	}
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	root := newRoot(&statStub{}, &out)

	root.SetArgs([]string{"--version"})
	err := root.Execute()
	if !errors.Is(err, cli.ErrVersionRequested) {
		t.Fatalf("expected ErrVersionRequested, got %v", err)
	}
	if !strings.Contains(out.String(), "v1.2.3") {
		t.Fatalf("expected version in output, got %q", out.String())
	}
}
