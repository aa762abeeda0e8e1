package omop

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/matsen/vocabmap/internal/session"
)

// DateFormat is the export date layout.
const DateFormat = "2006-01-02"

// Export file names.
const (
	ConceptFile      = "CONCEPT.csv"
	RelationshipFile = "CONCEPT_RELATIONSHIP.csv"
)

// ConceptRow is one CONCEPT table row for a resolved source concept.
// Rows are ephemeral: produced only during export, never persisted as
// session state.
type ConceptRow struct {
	ConceptID       int64
	ConceptName     string
	DomainID        string
	VocabularyID    string
	ConceptClassID  string
	StandardConcept string
	ConceptCode     string
	ValidStartDate  time.Time
	ValidEndDate    time.Time
	InvalidReason   string
}

// ConceptRelationshipRow is one CONCEPT_RELATIONSHIP table row.
type ConceptRelationshipRow struct {
	ConceptID1     int64
	ConceptID2     int64
	RelationshipID string
	ValidStartDate time.Time
	ValidEndDate   time.Time
	InvalidReason  string
}

// GenerateConceptTable emits one ConceptRow per resolved source concept
// across the sessions. Exported concepts are non-standard ("N") and valid
// from their last update date through the open-ended horizon.
func GenerateConceptTable(sessions []*session.Session, ids map[int64]int64) []ConceptRow {
	var rows []ConceptRow
	for _, s := range sessions {
		lookup := s.Source.Lookup()
		for _, m := range s.Matches {
			id, ok := ids[m.SourceKey]
			if !ok {
				continue
			}
			src := lookup[m.SourceKey]
			rows = append(rows, ConceptRow{
				ConceptID:       id,
				ConceptName:     src.ConceptName,
				VocabularyID:    src.VocabularyID,
				StandardConcept: "N",
				ConceptCode:     src.ConceptCode,
				ValidStartDate:  lastUpdateDate(m.LastUpdated),
				ValidEndDate:    ValidEndDate,
			})
		}
	}
	return rows
}

// GenerateRelationshipTable emits two rows per resolved match: a forward
// "Maps to" from the canonical source ID to the target and its "Maps from"
// inverse, preserving the bidirectional-relationship convention.
func GenerateRelationshipTable(sessions []*session.Session, ids map[int64]int64) []ConceptRelationshipRow {
	var rows []ConceptRelationshipRow
	for _, s := range sessions {
		for _, m := range s.Matches {
			id, ok := ids[m.SourceKey]
			if !ok {
				continue
			}
			start := lastUpdateDate(m.LastUpdated)
			rows = append(rows,
				ConceptRelationshipRow{
					ConceptID1:     id,
					ConceptID2:     m.TargetConceptID,
					RelationshipID: RelMapsTo,
					ValidStartDate: start,
					ValidEndDate:   ValidEndDate,
				},
				ConceptRelationshipRow{
					ConceptID1:     m.TargetConceptID,
					ConceptID2:     id,
					RelationshipID: RelMapsFrom,
					ValidStartDate: start,
					ValidEndDate:   ValidEndDate,
				},
			)
		}
	}
	return rows
}

// lastUpdateDate truncates a match's last update to its date.
func lastUpdateDate(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WriteTables writes the CONCEPT and CONCEPT_RELATIONSHIP CSV files into dir.
func WriteTables(dir string, concepts []ConceptRow, relationships []ConceptRelationshipRow) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	conceptRecords := [][]string{{
		"concept_id", "concept_name", "domain_id", "vocabulary_id",
		"concept_class_id", "standard_concept", "concept_code",
		"valid_start_date", "valid_end_date", "invalid_reason",
	}}
	for _, row := range concepts {
		conceptRecords = append(conceptRecords, []string{
			strconv.FormatInt(row.ConceptID, 10),
			row.ConceptName,
			row.DomainID,
			row.VocabularyID,
			row.ConceptClassID,
			row.StandardConcept,
			row.ConceptCode,
			row.ValidStartDate.Format(DateFormat),
			row.ValidEndDate.Format(DateFormat),
			row.InvalidReason,
		})
	}
	if err := writeCSV(filepath.Join(dir, ConceptFile), conceptRecords); err != nil {
		return err
	}

	relRecords := [][]string{{
		"concept_id_1", "concept_id_2", "relationship_id",
		"valid_start_date", "valid_end_date", "invalid_reason",
	}}
	for _, row := range relationships {
		relRecords = append(relRecords, []string{
			strconv.FormatInt(row.ConceptID1, 10),
			strconv.FormatInt(row.ConceptID2, 10),
			row.RelationshipID,
			row.ValidStartDate.Format(DateFormat),
			row.ValidEndDate.Format(DateFormat),
			row.InvalidReason,
		})
	}
	return writeCSV(filepath.Join(dir, RelationshipFile), relRecords)
}

// writeCSV writes records to path.
func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
