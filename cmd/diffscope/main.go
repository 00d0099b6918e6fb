package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bkyoung/diffscope/internal/adapter/cli"
	"github.com/bkyoung/diffscope/internal/adapter/git"
	"github.com/bkyoung/diffscope/internal/adapter/observability"
	jsonwriter "github.com/bkyoung/diffscope/internal/adapter/output/json"
	"github.com/bkyoung/diffscope/internal/adapter/output/markdown"
	"github.com/bkyoung/diffscope/internal/adapter/store/sqlite"
	"github.com/bkyoung/diffscope/internal/config"
	"github.com/bkyoung/diffscope/internal/usecase/stat"
	"github.com/bkyoung/diffscope/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "diffscope",
		EnvPrefix:   "DIFFSCOPE",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	gitEngine := git.NewEngine(repoDir)

	// Timestamp function for deterministic output file naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	writers := buildWriters(cfg.Output, nowFunc)

	var logger stat.Logger
	if cfg.Logging.Enabled {
		logger = observability.NewLogger(
			observability.ParseLevel(cfg.Logging.Level),
			observability.ParseFormat(cfg.Logging.Format),
		)
	}

	// Initialize store if enabled
	var historyStore stat.Store
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				historyStore = sqliteStore
				defer sqliteStore.Close()
			}
		}
	}

	summarizer := stat.NewSummarizer(stat.Deps{
		Source:  gitEngine,
		Writers: writers,
		Store:   historyStore,
		Logger:  logger,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Summarizer:        summarizer,
		DefaultOutputDir:  cfg.Output.Directory,
		DefaultRepository: repositoryName(repoDir),
		Version:           version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func buildWriters(cfg config.OutputConfig, nowFunc func() string) []stat.Writer {
	var writers []stat.Writer
	for _, format := range cfg.Formats {
		switch format {
		case "markdown":
			writers = append(writers, markdown.NewWriter(nowFunc))
		case "json":
			writers = append(writers, jsonwriter.NewWriter(nowFunc))
		default:
			log.Printf("warning: unknown output format %q, skipping", format)
		}
	}
	return writers
}

func repositoryName(repoDir string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "diffscope"))
	}
	return paths
}
