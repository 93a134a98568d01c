package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/project-tktt/dream-jobs/internal/domain"
	"go.uber.org/zap"
)

// snippetLength caps each description sent to the model, in runes
const snippetLength = 1000

// Advisor writes career advice for a set of enriched listings
type Advisor struct {
	model  Model
	logger *zap.Logger
}

// NewAdvisor creates an advisor; a nil model always returns StaticAdvice
func NewAdvisor(model Model, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{model: model, logger: logger}
}

// Advise never fails; model errors degrade to StaticAdvice
func (a *Advisor) Advise(ctx context.Context, jobs []domain.EnrichedJob, query string) string {
	prompt := fmt.Sprintf("Target Career Path: %s\n\nAvailable Jobs:\n%s", query, formatJobs(jobs))

	advice, err := complete(ctx, a.model, advisorSystemPrompt, prompt)
	if err != nil {
		a.logger.Warn("advisor fallback", zap.Error(err))
		return StaticAdvice
	}
	if advice == "" {
		return StaticAdvice
	}
	return advice
}

func formatJobs(jobs []domain.EnrichedJob) string {
	blocks := make([]string, 0, len(jobs))
	for i, j := range jobs {
		var b strings.Builder
		fmt.Fprintf(&b, "JOB #%d:\n", i+1)
		if j.Synthetic {
			b.WriteString("NOTE: placeholder data, not a real vacancy\n")
		}
		fmt.Fprintf(&b, "TITLE: %s\n", j.Title)
		fmt.Fprintf(&b, "COMPANY: %s\n", j.Company)
		fmt.Fprintf(&b, "LOCATION: %s\n", j.Location)
		fmt.Fprintf(&b, "SALARY: %s\n", j.Salary)
		fmt.Fprintf(&b, "URL: %s\n", j.Link)
		fmt.Fprintf(&b, "DESCRIPTION SNIPPET: %s", truncateRunes(j.Description, snippetLength))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n---\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
