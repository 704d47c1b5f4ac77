package store

import (
	"time"

	"github.com/stylefeed/catalog-service/internal/types"
)

// seed loads the default brand and category fixtures. Brands without API
// credentials are listed but cannot be synced until configured.
func (s *MemoryStore) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	categories := []string{"Clothing", "Shoes", "Accessories", "Bags", "Activewear"}
	for _, name := range categories {
		s.categorySeq++
		s.categories[s.categorySeq] = types.Category{ID: s.categorySeq, Name: name}
	}

	brands := []types.Brand{
		{Name: "Zara", Website: "https://www.zara.com"},
		{Name: "H&M", Website: "https://www.hm.com"},
		{Name: "Primark", Website: "https://www.primark.com"},
		{Name: "Nike", Website: "https://www.nike.com"},
		{Name: "Adidas", Website: "https://www.adidas.com"},
		{Name: "Mango", Website: "https://shop.mango.com"},
	}
	for _, b := range brands {
		s.brandSeq++
		b.ID = s.brandSeq
		b.CreatedAt = now
		s.brands[b.ID] = b
	}
}
