package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRequestQueue  = "jobsearch:requests"
	DefaultResponseQueue = "jobsearch:responses"
	// DefaultResponseTTL bounds how long an uncollected response is kept
	DefaultResponseTTL = 10 * time.Minute
)

// ResponseKey names the list holding the response to one request.
// Requests without an ID share the bare response queue.
func ResponseKey(responseQueue, requestID string) string {
	if requestID == "" {
		return responseQueue
	}
	return responseQueue + ":" + requestID
}

// Publisher pushes search requests and responses to Redis lists
type Publisher struct {
	client        *redis.Client
	requestQueue  string
	responseQueue string
	responseTTL   time.Duration
}

// NewPublisher creates a new queue publisher
func NewPublisher(client *redis.Client, requestQueue, responseQueue string, responseTTL time.Duration) *Publisher {
	if requestQueue == "" {
		requestQueue = DefaultRequestQueue
	}
	if responseQueue == "" {
		responseQueue = DefaultResponseQueue
	}
	if responseTTL <= 0 {
		responseTTL = DefaultResponseTTL
	}
	return &Publisher{
		client:        client,
		requestQueue:  requestQueue,
		responseQueue: responseQueue,
		responseTTL:   responseTTL,
	}
}

// Submit enqueues a search request for the worker
func (p *Publisher) Submit(ctx context.Context, req *domain.SearchRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	if err := p.client.LPush(ctx, p.requestQueue, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}

	return nil
}

// Publish pushes a finished response onto its request's own list and
// lets the list expire if nobody collects it
func (p *Publisher) Publish(ctx context.Context, resp *domain.SearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	key := ResponseKey(p.responseQueue, resp.ID)
	pipe := p.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.Expire(ctx, key, p.responseTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}

	return nil
}

// QueueLength returns the number of pending search requests
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.requestQueue).Result()
}
