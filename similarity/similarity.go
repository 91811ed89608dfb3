// Package similarity turns text into embedding vectors and decides whether two
// vectors describe the same story.
package similarity

import (
	"context"
	"log"
	"math"
	"sync"
)

// Embedder converts text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Engine wraps an Embedder with a per-run cache and a fail-soft contract.
type Engine struct {
	embedder Embedder
	cache    map[string][]float64
	mutex    sync.Mutex
}

// NewEngine creates an engine with an empty cache.
func NewEngine(embedder Embedder) *Engine {
	return &Engine{
		embedder: embedder,
		cache:    make(map[string][]float64),
	}
}

// Embed returns the embedding of text. Collaborator failures yield an empty
// vector, which never compares as similar to anything. Successful results
// are cached until Reset; failures are not.
func (e *Engine) Embed(ctx context.Context, text string) []float64 {
	e.mutex.Lock()
	if vec, ok := e.cache[text]; ok {
		e.mutex.Unlock()
		return vec
	}
	e.mutex.Unlock()

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("[similarity] failed to embed %q: %v", text, err)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}

	e.mutex.Lock()
	e.cache[text] = vec
	e.mutex.Unlock()
	return vec
}

// Reset drops cached embeddings. Called at the start of every run.
func (e *Engine) Reset() {
	e.mutex.Lock()
	e.cache = make(map[string][]float64)
	e.mutex.Unlock()
}

// CosineSimilarity returns dot(a,b) / (|a| * |b|). ok is false when the
// value is undefined: empty vectors, mismatched lengths or a zero norm.
func CosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// IsSimilar reports whether the cosine similarity of a and b is strictly
// greater than threshold. Undefined similarity is never similar.
func IsSimilar(a, b []float64, threshold float64) bool {
	score, ok := CosineSimilarity(a, b)
	if !ok {
		return false
	}
	return score > threshold
}
