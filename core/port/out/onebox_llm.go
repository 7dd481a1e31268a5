// Package out defines outbound ports (driven ports) for the application.
package out

import (
	"context"

	"github.com/18vikastg/onebox/core/domain"
)

// LabelClassifier asks a language model for one of the five labels.
// Implementations return the raw, trimmed model answer; validation happens in the caller.
type LabelClassifier interface {
	ClassifyLabel(ctx context.Context, msg *domain.NormalizedMessage) (string, error)
}

// ReplySynthesizer drafts a reply grounded on exemplar templates.
type ReplySynthesizer interface {
	SynthesizeReply(ctx context.Context, req *domain.ReplyRequest, exemplars []domain.SimilarityMatch, user domain.UserContext) (string, error)
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}
