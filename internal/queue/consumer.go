package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrEmptyQuery marks a request that carries nothing to search for
var ErrEmptyQuery = errors.New("empty query")

// Consumer pops search requests from a Redis list
type Consumer struct {
	client    *redis.Client
	queueName string
	timeout   time.Duration
}

// NewConsumer creates a new queue consumer
func NewConsumer(client *redis.Client, queueName string, timeout time.Duration) *Consumer {
	if queueName == "" {
		queueName = DefaultRequestQueue
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Consumer{
		client:    client,
		queueName: queueName,
		timeout:   timeout,
	}
}

// Consume blocks and waits for a request from the queue.
// Returns nil, nil if timeout occurs with no request.
func (c *Consumer) Consume(ctx context.Context) (*domain.SearchRequest, error) {
	result, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	return decodeRequest([]byte(result[1]))
}

// Receive waits for the response to requestID. A timeout surfaces as
// an error wrapping redis.Nil.
func Receive(ctx context.Context, client *redis.Client, responseQueue, requestID string, timeout time.Duration) (*domain.SearchResponse, error) {
	result, err := client.BRPop(ctx, timeout, ResponseKey(responseQueue, requestID)).Result()
	if err != nil {
		return nil, fmt.Errorf("brpop: %w", err)
	}
	if len(result) < 2 {
		return nil, fmt.Errorf("brpop: %w", redis.Nil)
	}

	var resp domain.SearchResponse
	if err := json.Unmarshal([]byte(result[1]), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}

func decodeRequest(data []byte) (*domain.SearchRequest, error) {
	var req domain.SearchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, fmt.Errorf("request %q: %w", req.ID, ErrEmptyQuery)
	}
	return &req, nil
}
