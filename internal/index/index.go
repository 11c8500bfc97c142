package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Embedder turns text into a vector. Implementations must be safe for
// concurrent use.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Hit is one similarity match, scored with the raw metric value.
type Hit struct {
	ID       string
	Metadata map[string]string
	Score    float64
}

// Index is a similarity-searchable store keyed by record identifier.
// Upsert overwrites on repeated identifiers, so retries are idempotent.
type Index interface {
	Upsert(ctx context.Context, id, text string, metadata map[string]string) error
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
	Close() error
}

// entry is the persisted form of one indexed document.
type entry struct {
	ID       string            `json:"id"`
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func marshalEntry(e *entry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index entry: %w", err)
	}
	return data, nil
}

func unmarshalEntry(data []byte) (*entry, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index entry: %w", err)
	}
	return &e, nil
}

// embed runs the embedder and applies the index's dimension and metric
// policy. Cosine indexes store unit vectors so similarity reduces to a
// dot product at query time.
func embed(ctx context.Context, embedder Embedder, text string, dimension int, metric string) ([]float32, error) {
	vec, err := embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if dimension > 0 && len(vec) != dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, index expects %d", len(vec), dimension)
	}
	if metric == "" || metric == "cosine" {
		vec = normalize(vec)
	}
	return vec, nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := 1.0 / math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) * inv)
	}
	return out
}

func dotProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// rank sorts hits by descending score and truncates to topK.
func rank(hits []Hit, topK int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
