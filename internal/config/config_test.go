package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JOBSDB_MAX_LISTINGS", "")
	t.Setenv("ELASTICSEARCH_URL", "")
	t.Setenv("POSTGRES_URL", "")

	cfg := Load()

	assert.Equal(t, "https://hk.jobsdb.com", cfg.Crawler.BaseURL)
	assert.Equal(t, 3, cfg.Crawler.MaxListings)
	assert.Equal(t, 15*time.Second, cfg.Crawler.ListingTimeout)
	assert.Equal(t, 8*time.Second, cfg.Crawler.DetailTimeout)
	assert.Equal(t, "jobsearch:requests", cfg.Redis.RequestQueue)
	assert.Equal(t, 10*time.Minute, cfg.Redis.ResponseTTL)
	assert.Empty(t, cfg.Elasticsearch.Addresses)
	assert.Empty(t, cfg.Postgres.ConnectionString)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JOBSDB_MAX_LISTINGS", "5")
	t.Setenv("JOBSDB_DETAIL_TIMEOUT", "2500")
	t.Setenv("JOBSDB_LISTING_TIMEOUT", "20s")
	t.Setenv("ELASTICSEARCH_URL", "http://es1:9200, http://es2:9200,")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")

	cfg := Load()

	assert.Equal(t, 5, cfg.Crawler.MaxListings)
	assert.Equal(t, 2500*time.Millisecond, cfg.Crawler.DetailTimeout)
	assert.Equal(t, 20*time.Second, cfg.Crawler.ListingTimeout)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
}
