package embedding

import (
	"context"
	"fmt"
)

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}

// ProviderError reports a failure of the external embedding provider. The
// matching pipeline surfaces it and aborts without writing partial session
// state; it never crashes the process.
type ProviderError struct {
	Op  string // operation that failed, e.g. "embed", "availability check"
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
