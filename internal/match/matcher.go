package match

import (
	"context"
	"fmt"
	"time"

	"github.com/matsen/vocabmap/internal/concept"
	"github.com/matsen/vocabmap/internal/embedding"
)

// ProgressReporter receives progress updates during embedding generation.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// MatchStats contains statistics from similarity matrix generation.
type MatchStats struct {
	SourceEmbedded int           `json:"source_embedded"`
	TargetEmbedded int           `json:"target_embedded"`
	Duration       time.Duration `json:"duration"`
}

// Matcher computes the source-by-target similarity matrix from concept-name
// embeddings.
type Matcher struct {
	provider embedding.Provider
	progress ProgressReporter
}

// NewMatcher creates a matcher backed by the given embedding provider.
func NewMatcher(provider embedding.Provider) *Matcher {
	return &Matcher{provider: provider}
}

// SetProgressReporter sets the progress reporter for the matcher.
func (m *Matcher) SetProgressReporter(reporter ProgressReporter) {
	m.progress = reporter
}

// Similarities computes the |source| x |target| cosine similarity matrix over
// embeddings of the concept names. A provider failure aborts the whole
// computation; no partial matrix is returned.
func (m *Matcher) Similarities(ctx context.Context, source *concept.SourceTable, target *concept.TargetTable) ([][]float32, *MatchStats, error) {
	startTime := time.Now()
	stats := &MatchStats{}

	sourceTexts := make([]string, source.Len())
	for i, c := range source.Concepts {
		sourceTexts[i] = c.ConceptName
	}
	targetTexts := make([]string, target.Len())
	for i, c := range target.Concepts {
		targetTexts[i] = c.ConceptName
	}

	total := len(sourceTexts) + len(targetTexts)

	sourceVecs, err := m.embedAll(ctx, sourceTexts, 0, total)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding source concepts: %w", err)
	}
	stats.SourceEmbedded = len(sourceVecs)

	targetVecs, err := m.embedAll(ctx, targetTexts, len(sourceTexts), total)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding target concepts: %w", err)
	}
	stats.TargetEmbedded = len(targetVecs)

	matrix := make([][]float32, len(sourceVecs))
	for i, sv := range sourceVecs {
		row := make([]float32, len(targetVecs))
		for j, tv := range targetVecs {
			row[j] = CosineSimilarity(sv, tv)
		}
		matrix[i] = row
	}

	stats.Duration = time.Since(startTime)
	return matrix, stats, nil
}

// embedAll embeds each text in order, reporting overall progress offset by
// the number of items already processed.
func (m *Matcher) embedAll(ctx context.Context, texts []string, done, total int) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		emb, err := m.provider.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding %q: %w", text, err)
		}
		vectors = append(vectors, emb.Vector)

		if m.progress != nil {
			m.progress.OnProgress(done+i+1, total)
		}
	}
	return vectors, nil
}
