package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// Analyzer turns a free-text request into search filters
type Analyzer struct {
	model  Model
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer; a nil model always takes the fallback path
func NewAnalyzer(model Model, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{model: model, logger: logger}
}

// Analyze never fails. When the model is unavailable or answers
// nonsense the whole query becomes the keyword.
func (a *Analyzer) Analyze(ctx context.Context, query string) domain.SearchFilters {
	query = strings.TrimSpace(query)

	content, err := complete(ctx, a.model, analyzerSystemPrompt, query, llms.WithJSONMode(), llms.WithTemperature(0))
	if err != nil {
		a.logger.Warn("analyzer fallback", zap.Error(err))
		return basicFilters(query)
	}

	filters, err := parseFilters(content)
	if err != nil {
		a.logger.Warn("analyzer fallback", zap.Error(err), zap.String("content", content))
		return basicFilters(query)
	}
	if filters.Keyword == "" {
		filters.Keyword = query
	}

	a.logger.Info("analysis result",
		zap.String("keyword", filters.Keyword),
		zap.String("location", filters.Location),
		zap.String("industry", filters.Industry),
		zap.String("salary_range", filters.SalaryRange))
	return filters
}

func basicFilters(query string) domain.SearchFilters {
	return domain.SearchFilters{Keyword: query, Location: "Hong Kong"}
}

// parseFilters reads the model's JSON object. Values may come back as
// numbers or nulls, so every field is read loosely.
func parseFilters(content string) (domain.SearchFilters, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(cleanMarkdownJSON(content)), &data); err != nil {
		return domain.SearchFilters{}, fmt.Errorf("parse filters json: %w", err)
	}

	return domain.SearchFilters{
		Keyword:     getString(data, "keyword", "keywords"),
		Location:    getString(data, "location", "where"),
		Industry:    getString(data, "industry", "classification"),
		SalaryRange: getString(data, "salaryRange", "salary_range", "salary"),
	}, nil
}

// getString returns the first non-empty value among keys
func getString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := data[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
