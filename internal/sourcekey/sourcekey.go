// Package sourcekey derives stable content-addressed identifiers for source concepts.
package sourcekey

import (
	"crypto/sha256"
	"encoding/binary"
)

const (
	// KeyModulus bounds generated keys to at most nine digits.
	KeyModulus = 1_000_000_000

	// SyntheticIDBase offsets synthesized concept IDs into the custom
	// (>2 billion) concept ID range of the target data model.
	SyntheticIDBase = 2_000_000_000

	// delimiter joins the three identity fields before hashing.
	delimiter = "_"
)

// Generate returns the source key for a concept. The key is a pure function
// of the three fields: identical inputs produce the identical key in any
// process, which is what allows deduplication across independently created
// sessions. Collisions are statistically negligible at expected table sizes
// and are not guarded against.
func Generate(conceptCode, conceptName, vocabularyID string) int64 {
	return int64(digestPrefix(conceptCode, conceptName, vocabularyID) % KeyModulus)
}

// SyntheticConceptID synthesizes a target-style concept ID directly from
// source attributes. This is the earlier design variant of key generation;
// the production export path assigns real IDs via omop.AssignConceptIDs.
func SyntheticConceptID(conceptCode, conceptName, vocabularyID string) int64 {
	return SyntheticIDBase + int64(digestPrefix(conceptCode, conceptName, vocabularyID)%KeyModulus)
}

// digestPrefix hashes the delimited fields and interprets the first eight
// digest bytes as a big-endian unsigned integer.
func digestPrefix(conceptCode, conceptName, vocabularyID string) uint64 {
	sum := sha256.Sum256([]byte(conceptCode + delimiter + conceptName + delimiter + vocabularyID))
	return binary.BigEndian.Uint64(sum[:8])
}
