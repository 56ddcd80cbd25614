package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/qafarov/agribot/internal/metrics"
	"github.com/qafarov/agribot/pkg/logger_i"
)

// Resize pads a vector with zeros or truncates it so its length is exactly
// dim. The vector index only accepts one fixed width.
func Resize(vec []float32, dim int) []float32 {
	if len(vec) == dim {
		return vec
	}
	if len(vec) > dim {
		return vec[:dim]
	}
	out := make([]float32, dim)
	copy(out, vec)
	return out
}

// FallbackVector derives a deterministic dim-length vector from the SHA-256
// hex digest of the text. Component i reads two hex characters at offset
// i mod len(digest), clamped at the digest end, and normalizes the byte to
// roughly [-1, 1.01]. The result carries no semantic meaning; it only keeps
// ingestion alive when the embedding model is unreachable.
func FallbackVector(text string, dim int) []float32 {
	sum := sha256.Sum256([]byte(text))
	digest := hex.EncodeToString(sum[:])

	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		pos := i % len(digest)
		end := pos + 2
		if end > len(digest) {
			end = len(digest)
		}
		byteVal, _ := strconv.ParseUint(digest[pos:end], 16, 16)
		normalized := (float32(byteVal)/255.0)*2 - 1
		vec[i] = normalized + 0.01
	}
	return vec
}

// Resilient wraps an Embedder so the pipeline never dies on embedding
// failure: the primary result is resized to the configured dimension and a
// hash-based vector stands in when the primary call errors. Callers can see
// whether the fallback fired; it is also counted in prometheus.
type Resilient struct {
	inner  Embedder
	dim    int
	logger *logger_i.Logger
}

func NewResilient(inner Embedder, dim int) *Resilient {
	return &Resilient{
		inner:  inner,
		dim:    dim,
		logger: logger_i.NewLogger("embedding"),
	}
}

// Embed returns a vector of exactly r.dim components and whether the
// fallback path was taken.
func (r *Resilient) Embed(ctx context.Context, text string) ([]float32, bool) {
	vec, err := r.inner.Embed(ctx, text)
	if err != nil {
		r.logger.Warn("Embedding generation failed, using hash fallback", "error", err)
		metrics.IncrementFallbackEmbeddings()
		return FallbackVector(text, r.dim), true
	}
	return Resize(vec, r.dim), false
}

// EmbedBatch embeds every text, falling back per item on a batch failure.
// Returns the vectors and how many of them are fallback vectors.
func (r *Resilient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, int) {
	vecs, err := r.inner.EmbedBatch(ctx, texts)
	if err != nil || len(vecs) != len(texts) {
		r.logger.Warn("Batch embedding failed, using hash fallback for the whole batch", "error", err)
		out := make([][]float32, len(texts))
		for i, t := range texts {
			out[i] = FallbackVector(t, r.dim)
			metrics.IncrementFallbackEmbeddings()
		}
		return out, len(texts)
	}
	for i := range vecs {
		vecs[i] = Resize(vecs[i], r.dim)
	}
	return vecs, 0
}
