package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/studyhub/studyhub-backend/models"
)

// embeddingToJSON marshals an embedding for a JSONB column.
// Empty embeddings are stored as NULL.
func embeddingToJSON(e models.Embedding) (interface{}, error) {
	if e.IsEmpty() {
		return nil, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return data, nil
}

// scanEmbedding unmarshals a JSONB column into an embedding.
// NULL yields a nil embedding.
func scanEmbedding(raw []byte) (models.Embedding, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var e models.Embedding
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}
	return e, nil
}

// analysisToJSON marshals a repository analysis for a JSONB column
func analysisToJSON(a *models.RepoAnalysis) (interface{}, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return data, nil
}

// scanAnalysis unmarshals a JSONB column into a repository analysis
func scanAnalysis(raw []byte) (*models.RepoAnalysis, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a models.RepoAnalysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &a, nil
}

// sourcesToJSON marshals message sources for a JSONB column
func sourcesToJSON(sources []models.Source) (interface{}, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(sources)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sources: %w", err)
	}
	return data, nil
}

// scanSources unmarshals a JSONB column into message sources
func scanSources(raw []byte) ([]models.Source, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var sources []models.Source
	if err := json.Unmarshal(raw, &sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
	}
	return sources, nil
}
