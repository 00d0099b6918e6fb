package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/diffscope/internal/unidiff"
	"github.com/bkyoung/diffscope/internal/usecase/stat"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// StatRunner defines the dependency required to run the stat command.
type StatRunner interface {
	Summarize(ctx context.Context, req stat.Request) (stat.Report, error)
	CurrentBranch(ctx context.Context) (string, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Summarizer        StatRunner
	Args              Arguments
	DefaultOutputDir  string
	DefaultRepository string
	Version           string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "diffscope",
		Short: "Unified diff statistics CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(statCommand(deps.Summarizer, deps.DefaultOutputDir, deps.DefaultRepository))
	root.AddCommand(filesCommand())
	root.AddCommand(linesCommand())

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func statCommand(summarizer StatRunner, defaultOutputDir, defaultRepository string) *cobra.Command {
	var baseRef string
	var targetRef string
	var includeUncommitted bool
	var outputDir string
	var repository string
	var saveArtifacts bool
	var noColor bool

	cmd := &cobra.Command{
		Use:   "stat [diff-file]",
		Short: "Summarize a diff as per-file change counts",
		Long: `Summarize a unified diff as per-file added/removed line counts.

The diff is read from the given file, from stdin when no file is given, or
from the configured git repository when --base/--target refs are set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if summarizer == nil {
				return fmt.Errorf("summarizer not configured")
			}
			ctx := cmd.Context()

			req := stat.Request{
				Repository:         repository,
				IncludeUncommitted: includeUncommitted,
			}
			if saveArtifacts {
				req.OutputDir = outputDir
			}

			useRefs := cmd.Flags().Changed("base") || cmd.Flags().Changed("target") || includeUncommitted
			switch {
			case len(args) > 0:
				text, err := readDiffFile(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.DiffText = text
			case useRefs:
				req.BaseRef = baseRef
				req.TargetRef = targetRef
				if req.TargetRef == "" && !includeUncommitted {
					resolved, err := summarizer.CurrentBranch(ctx)
					if err != nil {
						return fmt.Errorf("detect target branch: %w", err)
					}
					req.TargetRef = resolved
				}
			default:
				text, err := readAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.DiffText = text
			}

			report, err := summarizer.Summarize(ctx, req)
			if err != nil {
				return err
			}

			useColor := !noColor && stat.IsOutputTerminal()
			printReport(cmd.OutOrStdout(), report, useColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target ref to summarize (defaults to the checked-out branch)")
	cmd.Flags().BoolVar(&includeUncommitted, "include-uncommitted", false, "Diff the working tree against the base reference")
	if defaultOutputDir == "" {
		defaultOutputDir = "out"
	}
	cmd.Flags().StringVar(&outputDir, "output", defaultOutputDir, "Directory for report artifacts (with --save)")
	cmd.Flags().BoolVar(&saveArtifacts, "save", false, "Write report artifacts to the output directory")
	cmd.Flags().StringVar(&repository, "repository", defaultRepository, "Optional repository name override")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func filesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files [diff-file]",
		Short: "List the files a diff changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDiffInput(cmd, args)
			if err != nil {
				return err
			}
			for _, path := range unidiff.ChangedFiles(text) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	return cmd
}

func linesCommand() *cobra.Command {
	var addedOnly bool
	var removedOnly bool

	cmd := &cobra.Command{
		Use:   "lines [diff-file]",
		Short: "Print added and removed lines with their line numbers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addedOnly && removedOnly {
				return fmt.Errorf("--added and --removed are mutually exclusive")
			}
			text, err := readDiffInput(cmd, args)
			if err != nil {
				return err
			}

			parsed := unidiff.Parse(text)
			out := cmd.OutOrStdout()
			showAdded := !removedOnly
			showRemoved := !addedOnly

			for _, path := range parsed.Files {
				if showRemoved {
					for _, lc := range parsed.RemovedByFile[path] {
						_, _ = fmt.Fprintf(out, "%s:%d: -%s\n", path, lc.Line, lc.Text)
					}
				}
				if showAdded {
					for _, lc := range parsed.AddedByFile[path] {
						_, _ = fmt.Fprintf(out, "%s:%d: +%s\n", path, lc.Line, lc.Text)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&addedOnly, "added", false, "Only print added lines")
	cmd.Flags().BoolVar(&removedOnly, "removed", false, "Only print removed lines")

	return cmd
}

// readDiffInput reads diff text from the positional file argument, or from
// stdin when no argument (or "-") is given.
func readDiffInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return readDiffFile(args[0], cmd.InOrStdin())
	}
	return readAll(cmd.InOrStdin())
}

func readDiffFile(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		return readAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read diff file: %w", err)
	}
	return string(data), nil
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read diff from stdin: %w", err)
	}
	return string(data), nil
}

func printReport(w io.Writer, report stat.Report, useColor bool) {
	plus, minus, reset := "+", "-", ""
	if useColor {
		plus, minus, reset = "\033[32m+", "\033[31m-", "\033[0m"
	}

	for _, fs := range report.Files {
		_, _ = fmt.Fprintf(w, " %s | %s%d%s %s%d%s\n",
			fs.Path, plus, fs.Added, reset, minus, fs.Removed, reset)
	}
	_, _ = fmt.Fprintf(w, " %d files changed, %d insertions(+), %d deletions(-)\n",
		len(report.Files), report.TotalAdded, report.TotalRemoved)
}
