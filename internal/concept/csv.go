package concept

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Required column sets for uploaded CSV files. Column order in the file is
// free; presence is mandatory.
var (
	SourceColumns = []string{"source_concept_code", "source_concept_name", "source_vocabulary_id", "source_concept_count"}
	TargetColumns = []string{"concept_id", "concept_code", "concept_name", "vocabulary_id"}
)

// RowError reports a single row that failed type coercion.
type RowError struct {
	Row int    // zero-based data row index, header excluded
	Msg string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Msg)
}

// ValidationError reports why an uploaded table was rejected: either missing
// required columns (fatal before any row is parsed) or the complete set of
// per-row coercion failures.
type ValidationError struct {
	MissingColumns []string
	RowErrors      []RowError
}

func (e *ValidationError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("missing required columns: %s", strings.Join(e.MissingColumns, ", "))
	}
	msgs := make([]string, len(e.RowErrors))
	for i, re := range e.RowErrors {
		msgs[i] = re.Error()
	}
	return fmt.Sprintf("validation errors: %s", strings.Join(msgs, "; "))
}

// ReadSourceCSV parses an uploaded source concept CSV into a SourceTable.
// Every row is converted independently; coercion failures are collected and
// reported together rather than failing on the first bad row.
func ReadSourceCSV(r io.Reader) (*SourceTable, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	cols, missing := columnIndex(header, SourceColumns)
	if len(missing) > 0 {
		return nil, &ValidationError{MissingColumns: missing}
	}

	var concepts []SourceConcept
	var rowErrs []RowError
	for i, row := range rows {
		count, err := strconv.Atoi(strings.TrimSpace(row[cols["source_concept_count"]]))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i, Msg: fmt.Sprintf("invalid source_concept_count %q", row[cols["source_concept_count"]])})
			continue
		}
		concepts = append(concepts, NewSourceConcept(
			row[cols["source_concept_code"]],
			row[cols["source_concept_name"]],
			row[cols["source_vocabulary_id"]],
			count,
		))
	}

	if len(rowErrs) > 0 {
		return nil, &ValidationError{RowErrors: rowErrs}
	}
	return NewSourceTable(concepts), nil
}

// ReadTargetCSV parses an uploaded target concept CSV into a TargetTable.
// The sentinel record is prepended by the table constructor, not read from
// the upload.
func ReadTargetCSV(r io.Reader) (*TargetTable, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	cols, missing := columnIndex(header, TargetColumns)
	if len(missing) > 0 {
		return nil, &ValidationError{MissingColumns: missing}
	}

	var concepts []TargetConcept
	var rowErrs []RowError
	for i, row := range rows {
		id, err := strconv.ParseInt(strings.TrimSpace(row[cols["concept_id"]]), 10, 64)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i, Msg: fmt.Sprintf("invalid concept_id %q", row[cols["concept_id"]])})
			continue
		}
		concepts = append(concepts, TargetConcept{
			ConceptID:    id,
			ConceptCode:  row[cols["concept_code"]],
			ConceptName:  row[cols["concept_name"]],
			VocabularyID: row[cols["vocabulary_id"]],
		})
	}

	if len(rowErrs) > 0 {
		return nil, &ValidationError{RowErrors: rowErrs}
	}
	return NewTargetTable(concepts), nil
}

// readCSV reads the header row and all data rows.
func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("reading CSV: empty file")
	}
	return records[0], records[1:], nil
}

// columnIndex maps each required column name to its position in the header.
// Missing columns are returned sorted for stable error messages.
func columnIndex(header, required []string) (map[string]int, []string) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	cols := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		idx, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = idx
	}
	sort.Strings(missing)
	return cols, missing
}
