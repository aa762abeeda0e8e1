package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matsen/vocabmap/internal/concept"
	"github.com/matsen/vocabmap/internal/embedding"
	"github.com/matsen/vocabmap/internal/match"
	"github.com/matsen/vocabmap/internal/session"
	"github.com/spf13/cobra"
)

var (
	matchSourcePath string
	matchTargetPath string
	matchProject    string
)

func init() {
	matchCmd.Flags().StringVar(&matchSourcePath, "source", "", "Source concepts CSV file (required)")
	matchCmd.Flags().StringVar(&matchTargetPath, "target", "", "Target concepts CSV file (required)")
	matchCmd.Flags().StringVar(&matchProject, "project", "", "Project name for the new session (required)")
	matchCmd.MarkFlagRequired("source")
	matchCmd.MarkFlagRequired("target")
	matchCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(matchCmd)
}

// MatchResponse is the response for the match command.
type MatchResponse struct {
	Session      string  `json:"session"`
	Path         string  `json:"path"`
	SourceCount  int     `json:"source_count"`
	TargetCount  int     `json:"target_count"`
	MatchCount   int     `json:"matches_count"`
	Model        string  `json:"model"`
	EmbedSeconds float64 `json:"embed_seconds"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Create a session with similarity-seeded matches",
	Long: `Create a new mapping session from source and target concept CSVs.

Both tables are embedded with the configured model, cosine similarities
are computed, and each source concept is seeded with its most similar
target. The session is saved under its own timestamped directory.

Examples:
  vocabmap match --source local.csv --target snomed.csv --project icu
  vocabmap match --source local.csv --target snomed.csv --project icu --human`,
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := mustLoadConfig()
	root := resolveSessionsRoot()

	source := mustReadSourceCSV(matchSourcePath)
	target := mustReadTargetCSV(matchTargetPath)

	provider := embedding.NewOllamaProvider(
		embedding.WithBaseURL(cfg.ResolveOllamaURL()),
		embedding.WithModel(cfg.ResolveOllamaModel()),
		embedding.WithDimensions(cfg.ResolveDimensions()),
		embedding.WithRateLimit(cfg.ResolveRateLimit()),
	)
	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitDataError, "Ollama is not running at %s\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai", cfg.ResolveOllamaURL())
	}
	hasModel, err := provider.HasModel(ctx)
	if err != nil {
		exitWithError(ExitError, "checking model: %v", err)
	}
	if !hasModel {
		exitWithError(ExitModelNotFound, "Model %q not found\n\nPull it with 'ollama pull %s'", provider.ModelName(), provider.ModelName())
	}

	matcher := match.NewMatcher(provider)
	if humanOutput {
		matcher.SetProgressReporter(match.ProgressFunc(func(current, total int) {
			fmt.Fprintf(os.Stderr, "\rEmbedding %d/%d", current, total)
			if current == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}

	start := time.Now()
	similarities, _, err := matcher.Similarities(ctx, source, target)
	if err != nil {
		var provErr *embedding.ProviderError
		if errors.As(err, &provErr) {
			exitWithError(ExitDataError, "embedding failed: %v", err)
		}
		exitWithError(ExitError, "computing similarities: %v", err)
	}
	elapsed := time.Since(start)

	matches, err := match.GenerateInitialMatches(source, target, similarities)
	if err != nil {
		exitWithError(ExitError, "generating matches: %v", err)
	}

	s := &session.Session{
		ProjectName:  matchProject,
		Timestamp:    session.NewTimestamp(time.Now()),
		Source:       source,
		Target:       target,
		Similarities: similarities,
		Matches:      matches,
	}
	dir, err := session.Create(root, s)
	if err != nil {
		exitWithError(ExitError, "saving session: %v", err)
	}

	if humanOutput {
		outputHuman("Created session %s\n", s.Name())
		outputHuman("  %d source concepts, %d target concepts, %d matches\n",
			source.Len(), target.Len(), len(matches))
		outputHuman("  saved to %s\n", dir)
	} else {
		outputJSON(MatchResponse{
			Session:      s.Name(),
			Path:         dir,
			SourceCount:  source.Len(),
			TargetCount:  target.Len(),
			MatchCount:   len(matches),
			Model:        provider.ModelName(),
			EmbedSeconds: elapsed.Seconds(),
		})
	}

	return nil
}

// mustReadSourceCSV reads and validates the source concept CSV, exiting
// with per-row detail on validation failure.
func mustReadSourceCSV(path string) *concept.SourceTable {
	f, err := os.Open(path)
	if err != nil {
		exitWithError(ExitError, "opening source file: %v", err)
	}
	defer f.Close()

	table, err := concept.ReadSourceCSV(f)
	if err != nil {
		var valErr *concept.ValidationError
		if errors.As(err, &valErr) {
			exitWithError(ExitDataError, "invalid source CSV: %v", err)
		}
		exitWithError(ExitError, "reading source CSV: %v", err)
	}
	return table
}

// mustReadTargetCSV reads and validates the target concept CSV.
func mustReadTargetCSV(path string) *concept.TargetTable {
	f, err := os.Open(path)
	if err != nil {
		exitWithError(ExitError, "opening target file: %v", err)
	}
	defer f.Close()

	table, err := concept.ReadTargetCSV(f)
	if err != nil {
		var valErr *concept.ValidationError
		if errors.As(err, &valErr) {
			exitWithError(ExitDataError, "invalid target CSV: %v", err)
		}
		exitWithError(ExitError, "reading target CSV: %v", err)
	}
	return table
}
