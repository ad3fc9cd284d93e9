// Package embed maps text to fixed-dimension vectors for similarity scoring
// and clustering.
package embed

import (
	"context"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
)

// Embedder generates embedding vectors from text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// DefaultDimensions is the vector size of the local embedder.
const DefaultDimensions = 384

// HashEmbedder is a local, deterministic embedder. Each word and each
// character trigram of each word is hashed into one of Dimensions buckets
// with a hash-derived sign; the result is L2-normalized. Texts sharing words
// or word fragments land close together.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder returns a HashEmbedder. dims <= 0 uses DefaultDimensions.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Dimensions implements Embedder.
func (h *HashEmbedder) Dimensions() int { return h.dims }

// Embed implements Embedder. It never fails.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return h.vector(text), nil
}

// EmbedBatch implements Embedder.
func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dims)
	for _, w := range card.Words(text) {
		h.add(v, "w:"+w, 1.0)
		padded := "#" + w + "#"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			h.add(v, "t:"+string(runes[i:i+3]), 0.5)
		}
	}
	Normalize(v)
	return v
}

func (h *HashEmbedder) add(v []float32, feature string, weight float32) {
	sum := xxhash.Sum64String(feature)
	idx := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

// Normalize scales v to unit length in place. The zero vector is left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// Cosine returns the cosine similarity of a and b, or 0 if either is zero or
// the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarity embeds both texts and returns their cosine similarity.
func Similarity(ctx context.Context, e Embedder, a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, nil
	}
	vecs, err := e.EmbedBatch(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	return Cosine(vecs[0], vecs[1]), nil
}
