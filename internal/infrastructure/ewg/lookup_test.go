package ewg

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/cache"
	"github.com/porespective/backend/internal/usecase"
)

// TestProductLookup_ScrapesOnceThenServesFromFile runs a lookup through the
// scraper and a real file cache, then repeats it within the freshness window.
func TestProductLookup_ScrapesOnceThenServesFromFile(t *testing.T) {
	const query = "CeraVe Moisturizing Cream"

	page := &fakePage{doms: map[string]map[string][]*fakeElement{
		ceraVeSearch:   searchDOM(testProductURL),
		testProductURL: productDOM("CeraVe Moisturizing Cream", ceraVeRows()...),
	}}
	scraper, browser := newTestScraper(page)

	path := filepath.Join(t.TempDir(), "product_cache.json")
	service := usecase.NewProductService(cache.NewFileStore(path), scraper, usecase.ProductServiceConfig{
		MaxAge: 30 * 24 * time.Hour,
	})
	ctx := context.Background()

	first, err := service.GetProduct(ctx, query)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	want := []domain.IngredientEntry{
		{Name: "Water", Score: "1", Concerns: []string{}},
		{Name: "Fragrance", Score: "8", Concerns: []string{"Allergies/immunotoxicity (high)", "Endocrine disruption (moderate)"}},
	}
	assert.Equal(t, want, first.Record.Ingredients)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]domain.ProductRecord
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Contains(t, onDisk, query)
	stored := onDisk[query]
	assert.Equal(t, testProductURL, stored.ProductURL)
	assert.Equal(t, "CeraVe Moisturizing Cream", stored.ProductName)
	assert.Equal(t, want, stored.Ingredients)
	require.NotNil(t, stored.LastUpdated)

	second, err := service.GetProduct(ctx, query)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, want, second.Record.Ingredients)
	assert.True(t, stored.LastUpdated.Equal(*second.Record.LastUpdated), "hit is not re-stamped")

	assert.Equal(t, []string{ceraVeSearch, testProductURL}, page.navigated, "second lookup never touches the browser")
	assert.Equal(t, 1, browser.releases)
}
