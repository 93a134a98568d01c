package jobsdb

import (
	"errors"
	"fmt"

	"github.com/project-tktt/dream-jobs/internal/domain"
)

// ErrNoListings means the results page held no usable job card
var ErrNoListings = errors.New("no listings found")

// FailedDescription replaces the description of a listing whose page could not be loaded
const FailedDescription = "Failed to load."

// listingStage is what the listing phase produced
type listingStage struct {
	searchURL string
	summaries []domain.JobSummary
	err       error
}

// resolveListing decides whether the listing phase can go on to the
// detail phase. It returns the fallback result and false when it cannot.
func resolveListing(filters domain.SearchFilters, stage listingStage) (domain.SearchResult, bool) {
	if stage.err == nil && len(stage.summaries) > 0 {
		return domain.SearchResult{}, true
	}

	reason := ErrNoListings
	if stage.err != nil {
		reason = stage.err
	}
	return domain.SearchResult{
		Jobs:      []domain.EnrichedJob{Fallback(filters)},
		Outcome:   domain.OutcomeFallback,
		SearchURL: stage.searchURL,
		Reason:    reason.Error(),
	}, false
}

// detailStage is what the detail phase produced for one listing
type detailStage struct {
	summary domain.JobSummary
	detail  domain.JobDetail
	err     error
}

// resolveDetail merges a listing with its detail page, or with the
// placeholder detail when the page failed
func resolveDetail(stage detailStage) domain.EnrichedJob {
	if stage.err != nil {
		return domain.EnrichedJob{
			JobSummary:  stage.summary,
			Description: FailedDescription,
			Details: &domain.JobDetail{
				DescriptionText: FailedDescription,
				URL:             stage.summary.Link,
			},
		}
	}

	detail := stage.detail
	return domain.EnrichedJob{
		JobSummary:  stage.summary,
		Description: detail.DescriptionText,
		Details:     &detail,
	}
}

// resolveOutcome summarises the detail phase
func resolveOutcome(searchURL string, jobs []domain.EnrichedJob, failures int) domain.SearchResult {
	result := domain.SearchResult{
		Jobs:      jobs,
		Outcome:   domain.OutcomeSuccess,
		SearchURL: searchURL,
	}
	if failures > 0 {
		result.Outcome = domain.OutcomePartial
		result.Reason = fmt.Sprintf("%d of %d job pages failed to load", failures, len(jobs))
	}
	return result
}
