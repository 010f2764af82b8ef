package embed

import (
	"math"
	"sort"
)

// CosineSimilarity returns dot(a,b)/(|a|*|b|), or 0 if either vector has
// zero norm.
func CosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Candidate pairs an arbitrary identifier with its vector, so find_top_k can
// be used against any keyed collection of embeddings.
type Candidate struct {
	ID     int64
	Vector []float32
}

// Scored is a Candidate ranked against a query vector.
type Scored struct {
	ID    int64
	Score float32
}

// FindTopK keeps candidates whose similarity to query is >= threshold, sorts
// descending by score with a stable tiebreak on ID, and truncates to k.
func FindTopK(query []float32, candidates []Candidate, k int, threshold float32) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		score := CosineSimilarity(query, c.Vector)
		if score >= threshold {
			scored = append(scored, Scored{ID: c.ID, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	if k >= 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
