package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/project-tktt/dream-jobs/internal/domain"
	"go.uber.org/zap"
)

// ElasticsearchArchiver indexes every returned listing as its own document
type ElasticsearchArchiver struct {
	client    *elasticsearch.Client
	indexName string
	logger    *zap.Logger
}

// jobDocument is one listing as stored in the index
type jobDocument struct {
	RequestID   string    `json:"request_id"`
	Query       string    `json:"query"`
	Outcome     string    `json:"outcome"`
	Position    int       `json:"position"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Salary      string    `json:"salary,omitempty"`
	Link        string    `json:"link"`
	WorkType    string    `json:"work_type,omitempty"`
	Industry    string    `json:"classification,omitempty"`
	Description string    `json:"description"`
	Synthetic   bool      `json:"synthetic"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewElasticsearchArchiver creates a new Elasticsearch archiver
func NewElasticsearchArchiver(addresses []string, indexName string, logger *zap.Logger) (*ElasticsearchArchiver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ElasticsearchArchiver{
		client:    client,
		indexName: indexName,
		logger:    logger,
	}, nil
}

// Archive bulk-indexes the listings of one response
func (a *ElasticsearchArchiver) Archive(ctx context.Context, resp *domain.SearchResponse) error {
	if len(resp.Jobs) == 0 {
		return nil
	}

	body, err := bulkBody(a.indexName, resp)
	if err != nil {
		return err
	}

	res, err := a.client.Bulk(bytes.NewReader(body), a.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				a.logger.Warn("bulk index error",
					zap.String("id", item.Index.ID),
					zap.String("type", item.Index.Error.Type),
					zap.String("reason", item.Index.Error.Reason))
			}
		}
	}

	return nil
}

// EnsureIndex creates the index if it doesn't exist. Listings mix
// English and Chinese text, hence the cjk analyzer.
func (a *ElasticsearchArchiver) EnsureIndex(ctx context.Context) error {
	res, err := a.client.Indices.Exists([]string{a.indexName}, a.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"request_id": {"type": "keyword"},
				"query": {"type": "text"},
				"outcome": {"type": "keyword"},
				"position": {"type": "integer"},
				"title": {
					"type": "text",
					"analyzer": "cjk",
					"fields": {"keyword": {"type": "keyword"}}
				},
				"company": {"type": "text", "analyzer": "cjk"},
				"location": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"salary": {"type": "keyword"},
				"link": {"type": "keyword"},
				"work_type": {"type": "keyword"},
				"classification": {"type": "keyword"},
				"description": {"type": "text", "analyzer": "cjk"},
				"synthetic": {"type": "boolean"},
				"completed_at": {"type": "date"}
			}
		}
	}`

	res, err = a.client.Indices.Create(
		a.indexName,
		a.client.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
		a.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}

	return nil
}

// bulkBody renders the NDJSON bulk payload. Document IDs are
// "<request id>-<position>" so a retried response overwrites itself.
func bulkBody(indexName string, resp *domain.SearchResponse) ([]byte, error) {
	var buf bytes.Buffer

	for i, job := range resp.Jobs {
		id := fmt.Sprintf("%s-%d", resp.ID, i+1)
		meta := map[string]any{
			"index": map[string]any{
				"_index": indexName,
				"_id":    id,
			},
		}
		metaBytes, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("marshal meta %s: %w", id, err)
		}
		buf.Write(metaBytes)
		buf.WriteByte('\n')

		doc := jobDocument{
			RequestID:   resp.ID,
			Query:       resp.Query,
			Outcome:     string(resp.Outcome),
			Position:    i + 1,
			Title:       job.Title,
			Company:     job.Company,
			Location:    job.Location,
			Salary:      job.Salary,
			Link:        job.Link,
			Description: job.Description,
			Synthetic:   job.Synthetic,
			CompletedAt: resp.CompletedAt,
		}
		if job.Details != nil {
			doc.WorkType = job.Details.WorkType
			doc.Industry = job.Details.Classification
		}

		docBytes, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal job %s: %w", id, err)
		}
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}
