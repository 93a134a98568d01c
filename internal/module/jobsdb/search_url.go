package jobsdb

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/project-tktt/dream-jobs/internal/domain"
)

// salaryType is the period unit JobsDB applies to salaryrange
const salaryType = "monthly"

var nonSalaryChars = regexp.MustCompile(`[^0-9-]`)

// BuildSearchURL builds the search results URL for filters.
// Empty filters add no parameter.
func BuildSearchURL(baseURL string, filters domain.SearchFilters) string {
	params := url.Values{}

	if kw := strings.TrimSpace(filters.Keyword); kw != "" {
		params.Set("keywords", kw)
	}
	if loc := strings.TrimSpace(filters.Location); loc != "" {
		params.Set("where", loc)
	}
	if rng := CleanSalaryRange(filters.SalaryRange); rng != "" {
		params.Set("salaryrange", rng)
		params.Set("salarytype", salaryType)
	}
	if ind := strings.TrimSpace(filters.Industry); ind != "" {
		params.Set("classification", ind)
	}

	searchURL := strings.TrimRight(baseURL, "/") + "/jobs"
	if len(params) == 0 {
		return searchURL
	}
	return searchURL + "?" + params.Encode()
}

// CleanSalaryRange keeps only digits and hyphens, so "HK$30,000-50,000"
// becomes "30000-50000"
func CleanSalaryRange(raw string) string {
	return nonSalaryChars.ReplaceAllString(raw, "")
}
