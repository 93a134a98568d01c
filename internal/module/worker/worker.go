package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/project-tktt/dream-jobs/internal/common/archive"
	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/project-tktt/dream-jobs/internal/monitoring"
	"go.uber.org/zap"
)

// RequestSource yields queued search requests; nil, nil means nothing arrived in time
type RequestSource interface {
	Consume(ctx context.Context) (*domain.SearchRequest, error)
}

// ResponseSink receives finished responses
type ResponseSink interface {
	Publish(ctx context.Context, resp *domain.SearchResponse) error
}

// Claimer guards against answering the same request twice
type Claimer interface {
	Claim(ctx context.Context, requestID string) (bool, error)
	Release(ctx context.Context, requestID string) error
}

// Handler answers one search request
type Handler interface {
	Handle(ctx context.Context, req domain.SearchRequest) domain.SearchResponse
}

// Worker pops search requests, answers them and publishes the responses
type Worker struct {
	source   RequestSource
	handler  Handler
	sink     ResponseSink
	archiver archive.Archiver
	claimer  Claimer
	logger   *zap.Logger
	metrics  *monitoring.Metrics

	concurrency int
	retryDelay  time.Duration
}

// Config holds worker configuration
type Config struct {
	Concurrency int
	// Claimer is optional; without one every popped request is answered
	Claimer Claimer
}

// NewWorker creates a new worker. archiver may be nil.
func NewWorker(
	source RequestSource,
	handler Handler,
	sink ResponseSink,
	archiver archive.Archiver,
	cfg Config,
	logger *zap.Logger,
	metrics *monitoring.Metrics,
) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		source:      source,
		handler:     handler,
		sink:        sink,
		archiver:    archiver,
		claimer:     cfg.Claimer,
		logger:      logger,
		metrics:     metrics,
		concurrency: cfg.Concurrency,
		retryDelay:  time.Second,
	}
}

// Run starts the worker pool and blocks until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("starting worker pool", zap.Int("workers", w.concurrency))

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.runSingle(ctx, workerID)
		}(i)
	}

	wg.Wait()
	return ctx.Err()
}

func (w *Worker) runSingle(ctx context.Context, workerID int) {
	log := w.logger.With(zap.Int("worker", workerID))
	log.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return
		default:
		}

		// Consume blocks on BRPOP, so an empty queue does not spin
		req, err := w.source.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Warn("consume error", zap.Error(err))
			w.metrics.IncRequest("invalid")
			w.pause(ctx)
			continue
		}
		if req == nil {
			continue
		}

		if !w.claim(ctx, req.ID) {
			log.Info("duplicate request skipped", zap.String("request_id", req.ID))
			w.metrics.IncRequest("duplicate")
			continue
		}

		if err := w.process(ctx, *req); err != nil {
			w.release(req.ID)
			log.Error("request failed", zap.String("request_id", req.ID), zap.Error(err))
		}
	}
}

// process answers one request. The response is published even when
// archiving fails; only a publish failure is reported as an error.
func (w *Worker) process(ctx context.Context, req domain.SearchRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling request: %v", r)
		}
		result := "ok"
		if err != nil {
			result = "error"
		}
		w.metrics.IncRequest(result)
	}()

	resp := w.handler.Handle(ctx, req)

	if w.archiver != nil {
		if aerr := w.archiver.Archive(ctx, &resp); aerr != nil {
			w.logger.Warn("archive failed", zap.String("request_id", req.ID), zap.Error(aerr))
		}
	}

	if err := w.sink.Publish(ctx, &resp); err != nil {
		return fmt.Errorf("publish response: %w", err)
	}

	w.logger.Info("request done",
		zap.String("request_id", req.ID),
		zap.String("outcome", string(resp.Outcome)),
		zap.Int("jobs", len(resp.Jobs)))
	return nil
}

// claim fails open: a Redis error must not block answering
func (w *Worker) claim(ctx context.Context, id string) bool {
	if w.claimer == nil || id == "" {
		return true
	}
	ok, err := w.claimer.Claim(ctx, id)
	if err != nil {
		w.logger.Warn("claim failed", zap.String("request_id", id), zap.Error(err))
		return true
	}
	return ok
}

func (w *Worker) release(id string) {
	if w.claimer == nil || id == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.claimer.Release(ctx, id); err != nil {
		w.logger.Warn("release failed", zap.String("request_id", id), zap.Error(err))
	}
}

func (w *Worker) pause(ctx context.Context) {
	t := time.NewTimer(w.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// IsShutdown reports whether err only signals a requested stop
func IsShutdown(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
