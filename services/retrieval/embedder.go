package retrieval

import (
	"math"
	"strings"

	"github.com/studyhub/studyhub-backend/models"
)

// minTokenLen filters out short stopword-like tokens
const minTokenLen = 3

// Embed converts free text into a sparse term-frequency map: lowercase
// alphabetic tokens of length >= minTokenLen mapped to their frequency,
// normalized by the qualifying token count so the values sum to 1.
// Empty text (or text with no qualifying tokens) yields an empty map.
func Embed(text string) models.Embedding {
	embedding := models.Embedding{}
	if text == "" {
		return embedding
	}

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r < 'a' || r > 'z'
	})

	total := 0
	for _, token := range tokens {
		if len(token) < minTokenLen {
			continue
		}
		embedding[token]++
		total++
	}

	if total == 0 {
		return models.Embedding{}
	}
	for token := range embedding {
		embedding[token] /= float64(total)
	}
	return embedding
}

// CosineSimilarity computes the cosine similarity between two sparse
// term-frequency maps: dot product over matching keys divided by the product
// of the two magnitudes. Returns 0 when either map is empty or has zero
// magnitude. Symmetric and bounded in [0,1] for non-negative weights.
func CosineSimilarity(a, b models.Embedding) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return 0
	}

	var dot float64
	for token, weight := range a {
		if other, ok := b[token]; ok {
			dot += weight * other
		}
	}

	magA := magnitude(a)
	magB := magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (magA * magB)
}

func magnitude(e models.Embedding) float64 {
	var sumOfSquares float64
	for _, weight := range e {
		sumOfSquares += weight * weight
	}
	return math.Sqrt(sumOfSquares)
}
