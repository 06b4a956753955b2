package retrieval

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/embed"
)

// #region retriever
// Retriever ranks stored cases by cosine similarity to a query. It is purely
// read-only over the case store: one embedding call per query, then a full
// linear scan. No index structure — the store stays in the low thousands of
// cases, and an insert must be visible to the very next retrieval.
type Retriever struct {
	store    *casestore.Store
	embedder embed.Embedder
	config   Config
}

// NewRetriever creates a Retriever over the given store and embedder.
func NewRetriever(store *casestore.Store, embedder embed.Embedder, config Config) *Retriever {
	return &Retriever{store: store, embedder: embedder, config: config}
}

// #endregion retriever

// #region retrieve

// Retrieve returns the top-k stored cases at or above the similarity
// threshold, ordered by descending score with ties keeping store order.
// k <= 0 means the configured TopK. Empty store, blank query, and embedding
// failure all return an empty slice; retrieval never fails upward, it only
// finds nothing.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, k int) []Match {
	if k <= 0 {
		k = r.config.TopK
	}
	matches := r.scanAboveThreshold(ctx, queryText)
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// CountSimilar returns how many stored cases score at or above the threshold.
// It counts the full unfiltered list — no top-k truncation — because the
// confidence gate needs the true count, not the display list length.
func (r *Retriever) CountSimilar(ctx context.Context, queryText string) int {
	return len(r.scanAboveThreshold(ctx, queryText))
}

func (r *Retriever) scanAboveThreshold(ctx context.Context, queryText string) []Match {
	cases := r.store.All()
	if len(cases) == 0 {
		return nil
	}

	query := strings.TrimSpace(queryText)
	if query == "" {
		log.Printf("retrieval: empty query text")
		return nil
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil || len(queryEmbedding) == 0 {
		log.Printf("retrieval: query embedding failed: %v", err)
		return nil
	}

	matches := make([]Match, 0, len(cases))
	for _, c := range cases {
		if len(c.Embedding) == 0 {
			continue
		}
		matches = append(matches, Match{Case: c, Score: Cosine(queryEmbedding, c.Embedding)})
	}

	// Stable: equal scores keep insertion order, which decides which
	// exemplars are shown first on ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	above := matches[:0]
	for _, m := range matches {
		if m.Score >= r.config.SimilarityThreshold {
			above = append(above, m)
		}
	}
	return above
}

// #endregion retrieve

// #region cosine

// Cosine computes cosine similarity between two vectors. Returns 0 for
// zero-norm, zero-length, or mismatched vectors — never NaN.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

// #endregion cosine

// #region few-shot

// FormatFewShot renders matches as numbered exemplar lines for the downstream
// conversational layer's prompt.
func FormatFewShot(matches []Match) string {
	if len(matches) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "Case %d: %s -> Route: %s\n", i+1, m.Case.Summary, m.Case.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

// #endregion few-shot
