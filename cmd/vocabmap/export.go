package main

import (
	"errors"
	"fmt"

	"github.com/matsen/vocabmap/internal/omop"
	"github.com/matsen/vocabmap/internal/session"
	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportBaseID int64
)

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory for the CSV tables (required)")
	exportCmd.Flags().Int64Var(&exportBaseID, "base-id", omop.DefaultBaseID, "First canonical concept ID to assign")
	exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

// ExportResponse is the response for the export command.
type ExportResponse struct {
	Sessions      int      `json:"sessions"`
	Skipped       []string `json:"skipped_sessions,omitempty"`
	Concepts      int      `json:"concepts"`
	Relationships int      `json:"relationships"`
	BaseID        int64    `json:"base_id"`
	Path          string   `json:"path"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export confirmed mappings as OMOP-style CSV tables",
	Long: `Assign canonical concept IDs across all fully mapped sessions and
write CONCEPT.csv and CONCEPT_RELATIONSHIP.csv to the output directory.

Sessions with unconfirmed matches are skipped and reported. ID
assignment is deterministic: ordering by first confirmation time, then
concept name, then concept code, so re-running the export reproduces
the same IDs. A source key confirmed in more than one session is an
integrity failure and aborts the export.

Examples:
  vocabmap export --out ./omop
  vocabmap export --out ./omop --base-id 2000001001`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	root := resolveSessionsRoot()

	metas, err := session.List(root)
	if err != nil {
		exitWithError(ExitError, "listing sessions: %v", err)
	}
	if len(metas) == 0 {
		exitWithError(ExitSessionError, "no sessions found under %s", root)
	}

	var mapped []*session.Session
	var skipped []string
	for _, meta := range metas {
		s, err := session.Load(root, meta.SessionName)
		if err != nil {
			exitWithError(ExitSessionError, "loading session %s: %v", meta.SessionName, err)
		}
		if !s.FullyMapped() {
			skipped = append(skipped, meta.SessionName)
			continue
		}
		mapped = append(mapped, s)
	}
	if len(mapped) == 0 {
		exitWithError(ExitDataError, "no fully mapped sessions to export (%d in progress)", len(skipped))
	}

	ids, err := omop.AssignConceptIDs(mapped, exportBaseID)
	if err != nil {
		var integrityErr *omop.IntegrityError
		if errors.As(err, &integrityErr) {
			exitWithError(ExitDataError, "conflicting confirmations across sessions: %v", err)
		}
		exitWithError(ExitError, "assigning concept IDs: %v", err)
	}

	concepts := omop.GenerateConceptTable(mapped, ids)
	relationships := omop.GenerateRelationshipTable(mapped, ids)
	if err := omop.WriteTables(exportOut, concepts, relationships); err != nil {
		exitWithError(ExitError, "writing tables: %v", err)
	}

	if humanOutput {
		outputHuman("Exported %d concepts and %d relationships from %d sessions to %s\n",
			len(concepts), len(relationships), len(mapped), exportOut)
		for _, name := range skipped {
			fmt.Printf("  skipped (in progress): %s\n", name)
		}
	} else {
		outputJSON(ExportResponse{
			Sessions:      len(mapped),
			Skipped:       skipped,
			Concepts:      len(concepts),
			Relationships: len(relationships),
			BaseID:        exportBaseID,
			Path:          exportOut,
		})
	}

	return nil
}
