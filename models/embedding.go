package models

// Embedding is a sparse term-frequency vector: lowercase token -> normalized
// weight. It is independent of how it is serialized for storage; the
// repository layer marshals it into a JSONB column.
type Embedding map[string]float64

// IsEmpty returns true when the embedding carries no terms
func (e Embedding) IsEmpty() bool {
	return len(e) == 0
}
