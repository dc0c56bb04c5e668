package usecase

import (
	"context"
	"iter"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/porespective/backend/internal/domain"
)

// MockProductCache is a mock implementation of domain.ProductCache
type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Get(ctx context.Context, key string, maxAge time.Duration) (*domain.ProductRecord, error) {
	args := m.Called(ctx, key, maxAge)
	record, _ := args.Get(0).(*domain.ProductRecord)
	return record, args.Error(1)
}

func (m *MockProductCache) Put(ctx context.Context, key string, record *domain.ProductRecord) error {
	args := m.Called(ctx, key, record)
	return args.Error(0)
}

// MockScraper is a mock implementation of domain.ProductScraper
type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Scrape(ctx context.Context, query string) (*domain.ProductRecord, error) {
	args := m.Called(ctx, query)
	record, _ := args.Get(0).(*domain.ProductRecord)
	return record, args.Error(1)
}

// MockCompletionClient is a mock implementation of domain.CompletionClient.
// Stream replays the fragments given to On("Stream") and then the error, if any.
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *MockCompletionClient) Stream(ctx context.Context, messages []domain.Message) iter.Seq2[string, error] {
	args := m.Called(ctx, messages)
	parts, _ := args.Get(0).([]string)
	streamErr := args.Error(1)

	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
		if streamErr != nil {
			yield("", streamErr)
		}
	}
}

// MockSummaryCache is a mock implementation of domain.SummaryCache
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, key string) ([]string, error) {
	args := m.Called(ctx, key)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

func (m *MockSummaryCache) Set(ctx context.Context, key string, value []string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func ceraVe() *domain.ProductRecord {
	return &domain.ProductRecord{
		ProductURL:  "https://www.ewg.org/skindeep/products/123456-CeraVe_Moisturizing_Cream/",
		ProductName: "CeraVe Moisturizing Cream",
		Ingredients: []domain.IngredientEntry{
			{Name: "Water", Score: "1", Concerns: []string{}},
			{Name: "Fragrance", Score: "8", Concerns: []string{"Allergies/immunotoxicity (high)", "Endocrine disruption (moderate)"}},
		},
	}
}
