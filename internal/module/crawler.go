package module

import (
	"context"

	"github.com/project-tktt/dream-jobs/internal/domain"
)

// Searcher is the common interface for job board pipelines
type Searcher interface {
	// Search turns filters into enriched listings and reports how they were produced.
	// It never fails: unusable sources degrade to placeholder data.
	Search(ctx context.Context, filters domain.SearchFilters) domain.SearchResult
	// Enrich is Search without the outcome details
	Enrich(ctx context.Context, filters domain.SearchFilters) []domain.EnrichedJob
	// Source returns the source identifier
	Source() domain.JobSource
}
