package session

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/matsen/vocabmap/internal/concept"
	"github.com/matsen/vocabmap/internal/match"
)

// ErrSessionExists is returned when a one-shot save would overwrite an
// existing session namespace.
var ErrSessionExists = errors.New("session already exists")

// StorageError reports a failed durable operation, naming the specific
// artifact involved so partial sessions are never silently accepted.
type StorageError struct {
	Op       string // "save" or "load"
	Artifact string // artifact file name, or the session directory
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("session %s: %s: %v", e.Op, e.Artifact, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Dir returns the directory for a session name under the sessions root.
func Dir(root, name string) string {
	return filepath.Join(root, name)
}

// Create persists a new session under its own namespace. The save is
// one-shot: an existing namespace is refused rather than overwritten.
func Create(root string, s *Session) (string, error) {
	dir := Dir(root, s.Name())
	if _, err := os.Stat(dir); err == nil {
		return "", &StorageError{Op: "save", Artifact: dir, Err: ErrSessionExists}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &StorageError{Op: "save", Artifact: dir, Err: err}
	}

	if err := writeJSON(filepath.Join(dir, MetadataFile), s.metadata()); err != nil {
		return "", &StorageError{Op: "save", Artifact: MetadataFile, Err: err}
	}
	if err := writeJSON(filepath.Join(dir, SourceFile), s.Source); err != nil {
		return "", &StorageError{Op: "save", Artifact: SourceFile, Err: err}
	}
	if err := writeJSON(filepath.Join(dir, TargetFile), s.Target); err != nil {
		return "", &StorageError{Op: "save", Artifact: TargetFile, Err: err}
	}
	if err := writeGob(filepath.Join(dir, SimilaritiesFile), s.Similarities); err != nil {
		return "", &StorageError{Op: "save", Artifact: SimilaritiesFile, Err: err}
	}
	if err := SaveMatches(root, s); err != nil {
		return "", err
	}

	return dir, nil
}

// SaveMatches rewrites the session's entire match list. The full snapshot
// (never a diff) keeps the on-disk list complete and self-consistent; the
// write is atomic via temp file and rename.
func SaveMatches(root string, s *Session) error {
	records := make([]matchRecord, len(s.Matches))
	for i, m := range s.Matches {
		records[i] = encodeMatch(m)
	}
	path := filepath.Join(Dir(root, s.Name()), MatchesFile)
	if err := writeJSON(path, records); err != nil {
		return &StorageError{Op: "save", Artifact: MatchesFile, Err: err}
	}
	return nil
}

// List returns metadata for every session under the root, newest first.
// Only metadata files are read; directories with corrupted or missing
// metadata are skipped.
func List(root string) ([]Metadata, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "load", Artifact: root, Err: err}
	}

	var sessions []Metadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var meta Metadata
		if err := readJSON(filepath.Join(root, entry.Name(), MetadataFile), &meta); err != nil {
			continue
		}
		meta.SessionName = entry.Name()
		sessions = append(sessions, meta)
	}

	sort.Slice(sessions, func(a, b int) bool {
		return sessions[a].Timestamp > sessions[b].Timestamp
	})
	return sessions, nil
}

// Load reads a complete session by name. A missing artifact is a hard
// failure naming that artifact.
func Load(root, name string) (*Session, error) {
	dir := Dir(root, name)
	if _, err := os.Stat(dir); err != nil {
		return nil, &StorageError{Op: "load", Artifact: dir, Err: err}
	}

	var meta Metadata
	if err := readJSON(filepath.Join(dir, MetadataFile), &meta); err != nil {
		return nil, &StorageError{Op: "load", Artifact: MetadataFile, Err: err}
	}

	var source concept.SourceTable
	if err := readJSON(filepath.Join(dir, SourceFile), &source); err != nil {
		return nil, &StorageError{Op: "load", Artifact: SourceFile, Err: err}
	}

	var target concept.TargetTable
	if err := readJSON(filepath.Join(dir, TargetFile), &target); err != nil {
		return nil, &StorageError{Op: "load", Artifact: TargetFile, Err: err}
	}

	var similarities [][]float32
	if err := readGob(filepath.Join(dir, SimilaritiesFile), &similarities); err != nil {
		return nil, &StorageError{Op: "load", Artifact: SimilaritiesFile, Err: err}
	}

	var records []matchRecord
	if err := readJSON(filepath.Join(dir, MatchesFile), &records); err != nil {
		return nil, &StorageError{Op: "load", Artifact: MatchesFile, Err: err}
	}
	matches := make([]match.ConceptMatch, len(records))
	for i, rec := range records {
		m, err := decodeMatch(rec)
		if err != nil {
			return nil, &StorageError{Op: "load", Artifact: MatchesFile, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		matches[i] = m
	}

	return &Session{
		ProjectName:  meta.ProjectName,
		Timestamp:    meta.Timestamp,
		Source:       &source,
		Target:       &target,
		Similarities: similarities,
		Matches:      matches,
	}, nil
}

// writeJSON writes a value as indented JSON via temp file and rename.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	return writeAtomic(path, data)
}

// readJSON reads a JSON file into v.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	return nil
}

// writeGob writes a value GOB-encoded via temp file and rename.
func writeGob(path string, v interface{}) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// readGob reads a GOB file into v.
func readGob(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	return nil
}

// writeAtomic writes data via temp file and rename.
func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
