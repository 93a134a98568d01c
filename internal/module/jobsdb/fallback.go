package jobsdb

import (
	"strings"

	"github.com/project-tktt/dream-jobs/internal/common/extractor"
	"github.com/project-tktt/dream-jobs/internal/domain"
)

const (
	fallbackCompany     = "HK Enterprise"
	fallbackSalary      = "Market Rate"
	fallbackDescription = "Placeholder listing: live results from JobsDB could not be retrieved for this search, " +
		"so this entry is sample data and not a real vacancy. Try again later or broaden the search."
)

// Fallback builds the single synthetic listing returned when the job board
// produced nothing usable. Its link is never navigable.
func Fallback(filters domain.SearchFilters) domain.EnrichedJob {
	title := "Professional role"
	if kw := strings.TrimSpace(filters.Keyword); kw != "" {
		title = "Professional " + kw
	}

	return domain.EnrichedJob{
		JobSummary: domain.JobSummary{
			Title:    title,
			Company:  fallbackCompany,
			Location: extractor.FirstNonEmpty(strings.TrimSpace(filters.Location), DefaultLocation),
			Salary:   extractor.FirstNonEmpty(strings.TrimSpace(filters.SalaryRange), fallbackSalary),
			Link:     domain.NoLink,
		},
		Description: fallbackDescription,
		Synthetic:   true,
	}
}
