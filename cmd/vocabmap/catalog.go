package main

import (
	"github.com/matsen/vocabmap/internal/catalog"
	"github.com/spf13/cobra"
)

func init() {
	catalogCmd.AddCommand(catalogRebuildCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Maintain the ephemeral session catalog",
	Long: `Maintain the SQLite catalog over the session directories.

The catalog is a disposable index: the per-session JSON and gob
artifacts stay canonical, and the catalog can be rebuilt from them at
any time.`,
}

// RebuildResponse is the response for the catalog rebuild command.
type RebuildResponse struct {
	Status  string `json:"status"`
	Indexed int    `json:"indexed"`
	Path    string `json:"path"`
}

var catalogRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the catalog from session artifacts",
	RunE:  runCatalogRebuild,
}

func runCatalogRebuild(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()

	db, err := catalog.OpenDB(catalog.Path(root))
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	defer db.Close()

	indexed, err := db.Rebuild(root)
	if err != nil {
		exitWithError(ExitError, "rebuilding catalog: %v", err)
	}

	if humanOutput {
		outputHuman("Indexed %d sessions into %s\n", indexed, catalog.Path(root))
	} else {
		outputJSON(RebuildResponse{
			Status:  "rebuilt",
			Indexed: indexed,
			Path:    catalog.Path(root),
		})
	}

	return nil
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate match counts across all sessions",
	RunE:  runCatalogStats,
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()

	db, err := catalog.OpenDB(catalog.Path(root))
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	defer db.Close()

	if _, err := db.Rebuild(root); err != nil {
		exitWithError(ExitError, "rebuilding catalog: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		exitWithError(ExitError, "reading stats: %v", err)
	}

	if humanOutput {
		outputHuman("Sessions:     %d (%d fully mapped)\n", stats.Sessions, stats.FullyMapped)
		outputHuman("Matches:      %d\n", stats.Matches)
		outputHuman("  confirmed:   %d\n", stats.Confirmed)
		outputHuman("  rejected:    %d\n", stats.Rejected)
		outputHuman("  unconfirmed: %d\n", stats.Unconfirmed)
	} else {
		outputJSON(stats)
	}

	return nil
}
