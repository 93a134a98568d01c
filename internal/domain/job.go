package domain

import "time"

// SearchFilters holds structured search constraints derived from a free-text request.
// An empty field means "no constraint".
type SearchFilters struct {
	Keyword     string `json:"keyword,omitempty"`
	Location    string `json:"location,omitempty"`
	Industry    string `json:"industry,omitempty"`
	SalaryRange string `json:"salaryRange,omitempty"`
}

// NoLink marks a listing without a retrievable job page.
const NoLink = "#"

// JobSummary is a lightweight listing taken from a search results page
type JobSummary struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Salary   string `json:"salary,omitempty"`
	Link     string `json:"link"`
}

// JobDetail is the structured record scraped from a single job page.
// Any field may be empty when no selector matched.
type JobDetail struct {
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	WorkType        string `json:"workType"`
	Classification  string `json:"classification"`
	DescriptionHTML string `json:"descriptionHTML"`
	DescriptionText string `json:"descriptionText"`
	URL             string `json:"url"`
}

// EnrichedJob is a listing merged with its detail record
type EnrichedJob struct {
	JobSummary
	Description string     `json:"description"`
	Details     *JobDetail `json:"details,omitempty"`

	// Synthetic is set on placeholder data produced when the job board was unusable
	Synthetic bool `json:"synthetic,omitempty"`
}

// Outcome describes how a search result was produced
type Outcome string

const (
	// OutcomeSuccess - every listing was enriched with its detail page
	OutcomeSuccess Outcome = "success"
	// OutcomePartial - listings were found but at least one detail page failed
	OutcomePartial Outcome = "partial"
	// OutcomeFallback - no real listing was available, jobs hold placeholder data
	OutcomeFallback Outcome = "fallback"
)

// SearchResult is what one enrichment run produced.
// Jobs always holds at least one entry.
type SearchResult struct {
	Jobs      []EnrichedJob `json:"jobs"`
	Outcome   Outcome       `json:"outcome"`
	SearchURL string        `json:"search_url"`
	// Reason explains a fallback or partial outcome
	Reason string `json:"reason,omitempty"`
}

// SearchRequest is a free-text search submitted through the request queue
type SearchRequest struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
}

// SearchResponse is the full answer to a SearchRequest
type SearchResponse struct {
	ID          string        `json:"id"`
	Query       string        `json:"query"`
	Filters     SearchFilters `json:"filters"`
	Jobs        []EnrichedJob `json:"jobs"`
	Outcome     Outcome       `json:"outcome"`
	SearchURL   string        `json:"search_url,omitempty"`
	Advice      string        `json:"advice"`
	CompletedAt time.Time     `json:"completed_at"`
}

// JobSource represents a job listing source
type JobSource string

const (
	SourceJobsDB JobSource = "jobsdb"
)
