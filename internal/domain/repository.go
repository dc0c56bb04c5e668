package domain

import (
	"context"
	"iter"
	"time"
)

// ProductCache persists scraped product records keyed by the original search query
type ProductCache interface {
	// Get returns ErrCacheMiss when the key is absent or older than maxAge
	Get(ctx context.Context, key string, maxAge time.Duration) (*ProductRecord, error)
	// Put stamps record.LastUpdated and overwrites any prior entry for key
	Put(ctx context.Context, key string, record *ProductRecord) error
}

// SummaryCache holds generated ingredient summaries for a limited time
type SummaryCache interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, value []string, ttl time.Duration) error
}

// ProductScraper fetches a fresh product record from the source site
type ProductScraper interface {
	Scrape(ctx context.Context, query string) (*ProductRecord, error)
}

// CompletionClient is the text-completion service
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	// Stream yields text fragments that concatenate to the full response.
	// A non-nil error is always the last value yielded.
	Stream(ctx context.Context, messages []Message) iter.Seq2[string, error]
}
