package assistant

import (
	"context"
	"time"

	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/project-tktt/dream-jobs/internal/module"
	"go.uber.org/zap"
)

// Analyzer maps a free-text request to search filters
type Analyzer interface {
	Analyze(ctx context.Context, query string) domain.SearchFilters
}

// Advisor summarises enriched listings into advice
type Advisor interface {
	Advise(ctx context.Context, jobs []domain.EnrichedJob, query string) string
}

// Assistant answers a search request: analyze, then search, then advise
type Assistant struct {
	analyzer Analyzer
	searcher module.Searcher
	advisor  Advisor
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an assistant
func New(analyzer Analyzer, searcher module.Searcher, advisor Advisor, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		analyzer: analyzer,
		searcher: searcher,
		advisor:  advisor,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle never fails: each collaborator degrades on its own
func (a *Assistant) Handle(ctx context.Context, req domain.SearchRequest) domain.SearchResponse {
	log := a.logger.With(zap.String("request_id", req.ID))
	log.Info("processing search", zap.String("query", req.Query))

	filters := a.analyzer.Analyze(ctx, req.Query)
	result := a.searcher.Search(ctx, filters)
	log.Info("jobs found",
		zap.Int("count", len(result.Jobs)),
		zap.String("outcome", string(result.Outcome)))

	// advice is only requested once every listing has been enriched
	advice := a.advisor.Advise(ctx, result.Jobs, req.Query)

	return domain.SearchResponse{
		ID:          req.ID,
		Query:       req.Query,
		Filters:     filters,
		Jobs:        result.Jobs,
		Outcome:     result.Outcome,
		SearchURL:   result.SearchURL,
		Advice:      advice,
		CompletedAt: a.now().UTC(),
	}
}
