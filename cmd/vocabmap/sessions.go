package main

import (
	"fmt"

	"github.com/matsen/vocabmap/internal/catalog"
	"github.com/matsen/vocabmap/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and inspect mapping sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions, newest first",
	Long: `List all sessions under the sessions directory, newest first.

The listing is served from the ephemeral SQLite catalog, which is
refreshed from the session artifacts on each run. Sessions with
corrupted artifacts are skipped.`,
	RunE: runSessionsList,
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()

	entries, err := catalogEntries(root)
	if err != nil {
		exitWithError(ExitError, "listing sessions: %v", err)
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No sessions")
			return nil
		}
		fmt.Printf("%d sessions:\n\n", len(entries))
		for _, e := range entries {
			state := "in progress"
			if e.FullyMapped() {
				state = "fully mapped"
			}
			fmt.Printf("  %-40s %4d matches  %4d confirmed  %4d rejected  [%s]\n",
				e.SessionName, e.MatchCount, e.Confirmed, e.Rejected, state)
		}
	} else {
		if entries == nil {
			entries = []catalog.Entry{}
		}
		outputJSON(entries)
	}

	return nil
}

// catalogEntries refreshes the catalog from the session artifacts and
// returns its entries. If the catalog database cannot be opened the
// metadata files are scanned directly instead.
func catalogEntries(root string) ([]catalog.Entry, error) {
	db, err := catalog.OpenDB(catalog.Path(root))
	if err != nil {
		return scanEntries(root)
	}
	defer db.Close()

	if _, err := db.Rebuild(root); err != nil {
		return scanEntries(root)
	}
	return db.List()
}

// scanEntries lists sessions straight from the metadata files. Status
// tallies require bulk artifacts, so they are left zero and fully-mapped
// state is unknown; unconfirmed is set to the match count to avoid
// reporting unreviewed sessions as done.
func scanEntries(root string) ([]catalog.Entry, error) {
	metas, err := session.List(root)
	if err != nil {
		return nil, err
	}
	entries := make([]catalog.Entry, len(metas))
	for i, meta := range metas {
		entries[i] = catalog.Entry{
			SessionName: meta.SessionName,
			ProjectName: meta.ProjectName,
			Timestamp:   meta.Timestamp,
			SourceCount: meta.SourceCount,
			TargetCount: meta.TargetCount,
			MatchCount:  meta.MatchCount,
			Unconfirmed: meta.MatchCount,
		}
	}
	return entries, nil
}

// SessionShowResponse is the response for the sessions show command.
type SessionShowResponse struct {
	Session     string          `json:"session"`
	ProjectName string          `json:"project_name"`
	Timestamp   string          `json:"timestamp"`
	SourceCount int             `json:"source_count"`
	TargetCount int             `json:"target_count"`
	MatchCount  int             `json:"matches_count"`
	Summary     session.Summary `json:"summary"`
	FullyMapped bool            `json:"fully_mapped"`
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Show one session's status",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()
	s := mustLoadSession(root, args[0])
	sum := s.Summarize()

	if humanOutput {
		fmt.Printf("Session:  %s\n", s.Name())
		fmt.Printf("Project:  %s\n", s.ProjectName)
		fmt.Printf("Created:  %s\n", s.Timestamp)
		fmt.Printf("Source:   %d concepts\n", s.Source.Len())
		fmt.Printf("Target:   %d concepts\n", s.Target.Len())
		fmt.Printf("Matches:  %d (%d confirmed, %d rejected, %d unconfirmed)\n",
			len(s.Matches), sum.Confirmed, sum.Rejected, sum.Unconfirmed)
		if s.FullyMapped() {
			fmt.Println("Status:   fully mapped")
		} else {
			fmt.Println("Status:   in progress")
		}
	} else {
		outputJSON(SessionShowResponse{
			Session:     s.Name(),
			ProjectName: s.ProjectName,
			Timestamp:   s.Timestamp,
			SourceCount: s.Source.Len(),
			TargetCount: s.Target.Len(),
			MatchCount:  len(s.Matches),
			Summary:     sum,
			FullyMapped: s.FullyMapped(),
		})
	}

	return nil
}
