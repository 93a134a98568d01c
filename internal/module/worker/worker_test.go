package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/project-tktt/dream-jobs/internal/domain"
	"github.com/project-tktt/dream-jobs/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanSource serves requests from a channel and reports nothing once it is drained
type chanSource struct {
	reqs chan *domain.SearchRequest
	errs chan error
}

func (s *chanSource) Consume(ctx context.Context) (*domain.SearchRequest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-s.errs:
		return nil, err
	case req := <-s.reqs:
		return req, nil
	case <-time.After(10 * time.Millisecond):
		return nil, nil
	}
}

type echoHandler struct{ panicOn string }

func (h echoHandler) Handle(ctx context.Context, req domain.SearchRequest) domain.SearchResponse {
	if req.ID == h.panicOn {
		panic("boom")
	}
	return domain.SearchResponse{ID: req.ID, Query: req.Query, Outcome: domain.OutcomeSuccess}
}

type memorySink struct {
	mu    sync.Mutex
	resps []*domain.SearchResponse
	done  chan struct{}
	want  int
	err   error
}

func (s *memorySink) Publish(ctx context.Context, resp *domain.SearchResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.resps = append(s.resps, resp)
	if len(s.resps) == s.want {
		close(s.done)
	}
	return nil
}

type failingArchiver struct{ calls int }

func (a *failingArchiver) Archive(ctx context.Context, resp *domain.SearchResponse) error {
	a.calls++
	return errors.New("postgres down")
}

func TestWorker_Run(t *testing.T) {
	src := &chanSource{reqs: make(chan *domain.SearchRequest, 3), errs: make(chan error, 1)}
	sink := &memorySink{done: make(chan struct{}), want: 3}
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	for _, id := range []string{"a", "b", "c"} {
		src.reqs <- &domain.SearchRequest{ID: id, Query: "clerk"}
	}

	w := NewWorker(src, echoHandler{}, sink, nil, Config{Concurrency: 2}, nil, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatal("responses not published")
	}
	cancel()

	err := <-errCh
	assert.True(t, IsShutdown(err))

	ids := map[string]bool{}
	for _, r := range sink.resps {
		ids[r.ID] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, ids)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("ok")))
}

func TestWorker_Process(t *testing.T) {
	t.Run("archive failure still publishes", func(t *testing.T) {
		sink := &memorySink{done: make(chan struct{}), want: 1}
		arch := &failingArchiver{}
		w := NewWorker(nil, echoHandler{}, sink, arch, Config{}, nil, nil)

		require.NoError(t, w.process(context.Background(), domain.SearchRequest{ID: "x"}))
		assert.Equal(t, 1, arch.calls)
		assert.Len(t, sink.resps, 1)
	})

	t.Run("publish failure", func(t *testing.T) {
		sink := &memorySink{err: errors.New("redis down")}
		w := NewWorker(nil, echoHandler{}, sink, nil, Config{}, nil, nil)

		assert.ErrorContains(t, w.process(context.Background(), domain.SearchRequest{ID: "x"}), "publish response")
	})

	t.Run("handler panic is recovered", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		metrics := monitoring.NewMetrics(reg)
		sink := &memorySink{done: make(chan struct{}), want: 1}
		w := NewWorker(nil, echoHandler{panicOn: "bad"}, sink, nil, Config{}, nil, metrics)

		err := w.process(context.Background(), domain.SearchRequest{ID: "bad"})
		assert.ErrorContains(t, err, "panic")
		assert.Empty(t, sink.resps)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("error")))
	})
}

func TestWorker_ConsumeErrorIsCounted(t *testing.T) {
	src := &chanSource{reqs: make(chan *domain.SearchRequest), errs: make(chan error, 1)}
	src.errs <- errors.New("unmarshal request")
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	w := NewWorker(src, echoHandler{}, &memorySink{}, nil, Config{Concurrency: 1}, nil, metrics)
	w.retryDelay = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("invalid")))
}

type memoryClaimer struct {
	mu       sync.Mutex
	seen     map[string]bool
	released []string
}

func (c *memoryClaimer) Claim(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[id] {
		return false, nil
	}
	c.seen[id] = true
	return true, nil
}

func (c *memoryClaimer) Release(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seen, id)
	c.released = append(c.released, id)
	return nil
}

func TestWorker_SkipsDuplicateRequests(t *testing.T) {
	src := &chanSource{reqs: make(chan *domain.SearchRequest, 3), errs: make(chan error)}
	sink := &memorySink{done: make(chan struct{}), want: 2}
	claimer := &memoryClaimer{seen: map[string]bool{}}
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	src.reqs <- &domain.SearchRequest{ID: "a", Query: "clerk"}
	src.reqs <- &domain.SearchRequest{ID: "a", Query: "clerk"}
	src.reqs <- &domain.SearchRequest{ID: "b", Query: "clerk"}

	w := NewWorker(src, echoHandler{}, sink, nil, Config{Concurrency: 1, Claimer: claimer}, nil, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatal("responses not published")
	}
	cancel()
	<-errCh

	assert.Len(t, sink.resps, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("duplicate")))
}

func TestWorker_ReleasesFailedRequests(t *testing.T) {
	src := &chanSource{reqs: make(chan *domain.SearchRequest, 1), errs: make(chan error)}
	claimer := &memoryClaimer{seen: map[string]bool{}}
	src.reqs <- &domain.SearchRequest{ID: "z", Query: "clerk"}

	w := NewWorker(src, echoHandler{}, &memorySink{err: errors.New("redis down")}, nil, Config{Concurrency: 1, Claimer: claimer}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	claimer.mu.Lock()
	defer claimer.mu.Unlock()
	assert.Equal(t, []string{"z"}, claimer.released)
}
