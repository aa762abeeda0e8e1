package main

import (
	"fmt"
	"time"

	"github.com/matsen/vocabmap/internal/review"
	"github.com/matsen/vocabmap/internal/session"
	"github.com/spf13/cobra"
)

var (
	reviewIndex       int
	reviewTarget      int64
	reviewFrom        int
	reviewTo          int
	reviewPage        int
	reviewUnconfirmed bool
	reviewSort        string
)

func init() {
	reviewConfirmCmd.Flags().IntVar(&reviewIndex, "index", -1, "Match index to confirm (required)")
	reviewConfirmCmd.Flags().Int64Var(&reviewTarget, "target", -1, "Override target concept ID before confirming")
	reviewConfirmCmd.MarkFlagRequired("index")

	reviewConfirmAllCmd.Flags().IntVar(&reviewFrom, "from", 0, "First match index of the range")
	reviewConfirmAllCmd.Flags().IntVar(&reviewTo, "to", -1, "Last match index of the range (default: last match)")

	reviewRejectCmd.Flags().IntVar(&reviewFrom, "from", 0, "First match index of the range")
	reviewRejectCmd.Flags().IntVar(&reviewTo, "to", -1, "Last match index of the range (default: last match)")

	reviewListCmd.Flags().IntVar(&reviewPage, "page", 0, "Zero-based page number")
	reviewListCmd.Flags().BoolVar(&reviewUnconfirmed, "unconfirmed", false, "Show only matches awaiting review")
	reviewListCmd.Flags().StringVar(&reviewSort, "sort", "none", "Display order: none, name-asc, name-desc, score-high, score-low")

	reviewCmd.AddCommand(reviewConfirmCmd)
	reviewCmd.AddCommand(reviewConfirmAllCmd)
	reviewCmd.AddCommand(reviewRejectCmd)
	reviewCmd.AddCommand(reviewListCmd)
	rootCmd.AddCommand(reviewCmd)
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Confirm, reject, and browse a session's matches",
}

// ReviewActionResponse is the response for review mutations.
type ReviewActionResponse struct {
	Session     string          `json:"session"`
	Action      string          `json:"action"`
	Summary     session.Summary `json:"summary"`
	FullyMapped bool            `json:"fully_mapped"`
}

var reviewConfirmCmd = &cobra.Command{
	Use:   "confirm <session>",
	Short: "Confirm one match, optionally overriding its target",
	Long: `Confirm the match at --index.

With --target, the match is re-pointed at that target concept first and
its similarity score becomes NA. Confirming a match whose target is the
"no matching concept" record marks it rejected instead of confirmed.

Examples:
  vocabmap review confirm icu_20260301_100000 --index 4
  vocabmap review confirm icu_20260301_100000 --index 4 --target 3567801
  vocabmap review confirm icu_20260301_100000 --index 4 --target 0`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewConfirm,
}

func runReviewConfirm(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()
	s := mustLoadSession(root, args[0])
	r := review.New(s.Matches, s.Target)

	if cmd.Flags().Changed("target") {
		if err := r.SetOverride(reviewIndex, reviewTarget); err != nil {
			exitWithError(ExitError, "staging override: %v", err)
		}
	}
	if err := r.ConfirmSingle(reviewIndex, time.Now().UTC()); err != nil {
		exitWithError(ExitError, "confirming match %d: %v", reviewIndex, err)
	}

	mustSaveMatches(root, s)
	outputReviewAction(s, "confirm")
	return nil
}

var reviewConfirmAllCmd = &cobra.Command{
	Use:   "confirm-all <session>",
	Short: "Confirm a range of matches",
	Long: `Confirm every match in the index range [--from, --to].

The whole range is validated before anything changes, so a bad bound
leaves the session untouched. Matches targeted at the "no matching
concept" record are marked rejected instead of confirmed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewConfirmAll,
}

func runReviewConfirmAll(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()
	s := mustLoadSession(root, args[0])
	r := review.New(s.Matches, s.Target)

	to := reviewTo
	if to < 0 {
		to = len(s.Matches) - 1
	}
	// The flag range is inclusive; the engine takes [start, end).
	if err := r.ConfirmRange(reviewFrom, to+1, time.Now().UTC()); err != nil {
		exitWithError(ExitError, "confirming range [%d, %d]: %v", reviewFrom, to, err)
	}

	mustSaveMatches(root, s)
	outputReviewAction(s, "confirm-all")
	return nil
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject <session>",
	Short: "Reject unconfirmed matches in a range",
	Long: `Reject every still-unconfirmed match in the index range [--from, --to].

Rejected matches are re-pointed at the "no matching concept" record with
an NA score. Matches already confirmed are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewReject,
}

func runReviewReject(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()
	s := mustLoadSession(root, args[0])
	r := review.New(s.Matches, s.Target)

	to := reviewTo
	if to < 0 {
		to = len(s.Matches) - 1
	}
	// The flag range is inclusive; the engine takes [start, end).
	if err := r.RejectUnconfirmed(reviewFrom, to+1, time.Now().UTC()); err != nil {
		exitWithError(ExitError, "rejecting range [%d, %d]: %v", reviewFrom, to, err)
	}

	mustSaveMatches(root, s)
	outputReviewAction(s, "reject")
	return nil
}

func outputReviewAction(s *session.Session, action string) {
	sum := s.Summarize()
	if humanOutput {
		outputHuman("%s: %d confirmed, %d rejected, %d unconfirmed\n",
			action, sum.Confirmed, sum.Rejected, sum.Unconfirmed)
		if s.FullyMapped() {
			outputHuman("Session is fully mapped.\n")
		}
	} else {
		outputJSON(ReviewActionResponse{
			Session:     s.Name(),
			Action:      action,
			Summary:     sum,
			FullyMapped: s.FullyMapped(),
		})
	}
}

// ReviewRow is one match in review list output. Index always refers to the
// stored match list, whatever the display order.
type ReviewRow struct {
	Index       int    `json:"index"`
	SourceKey   int64  `json:"source_key"`
	SourceName  string `json:"source_name"`
	SourceCode  string `json:"source_code"`
	TargetID    int64  `json:"target_concept_id"`
	TargetName  string `json:"target_name"`
	Score       string `json:"similarity_score"`
	Status      string `json:"confirmation_status"`
	LastUpdated string `json:"last_update_timestamp,omitempty"`
}

// ReviewListResponse is the response for the review list command.
type ReviewListResponse struct {
	Session    string          `json:"session"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
	Summary    session.Summary `json:"summary"`
	Rows       []ReviewRow     `json:"rows"`
}

var reviewListCmd = &cobra.Command{
	Use:   "list <session>",
	Short: "Browse a session's matches page by page",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewList,
}

func runReviewList(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()
	s := mustLoadSession(root, args[0])

	sortOpt, err := review.ParseSortOption(reviewSort)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	sourceLookup := s.Source.Lookup()
	targetLookup := s.Target.Lookup()

	order := review.SortOrder(s.Matches, sourceLookup, sortOpt)
	if reviewUnconfirmed {
		var pending []int
		for _, idx := range order {
			if !s.Matches[idx].Resolved() {
				pending = append(pending, idx)
			}
		}
		order = pending
	}

	start, end, totalPages := review.PageBounds(reviewPage, len(order), ReviewPageSize)
	rows := make([]ReviewRow, 0, end-start)
	for _, idx := range order[start:end] {
		m := s.Matches[idx]
		src := sourceLookup[m.SourceKey]
		rows = append(rows, ReviewRow{
			Index:       idx,
			SourceKey:   m.SourceKey,
			SourceName:  src.ConceptName,
			SourceCode:  src.ConceptCode,
			TargetID:    m.TargetConceptID,
			TargetName:  targetLookup[m.TargetConceptID].ConceptName,
			Score:       formatScore(m.SimilarityScore, m.ScoreNA),
			Status:      m.Status.String(),
			LastUpdated: formatOptional(m.LastUpdated),
		})
	}

	if humanOutput {
		sum := s.Summarize()
		fmt.Printf("Session %s, page %d/%d (%d matches, %d unconfirmed)\n\n",
			s.Name(), reviewPage, totalPages, len(s.Matches), sum.Unconfirmed)
		for _, row := range rows {
			fmt.Printf("  %4d  %-11s %6s  %s\n", row.Index, row.Status, row.Score,
				truncateString(row.SourceName, NameMaxLen))
			fmt.Printf("        -> [%d] %s\n", row.TargetID,
				truncateString(row.TargetName, NameMaxLen))
		}
	} else {
		outputJSON(ReviewListResponse{
			Session:    s.Name(),
			Page:       reviewPage,
			TotalPages: totalPages,
			Total:      len(order),
			Summary:    s.Summarize(),
			Rows:       rows,
		})
	}

	return nil
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTimestamp(t)
}
