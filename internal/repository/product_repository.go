package repository

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/content"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/pricing"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	products map[int64]models.Product
}

// NewInMemoryProductRepository creates a repository over products, or over
// the seed catalog when none are given. Products must pass ValidateCatalog.
func NewInMemoryProductRepository(products ...models.Product) (*InMemoryProductRepository, error) {
	if len(products) == 0 {
		products = SeedProducts()
	}
	if err := ValidateCatalog(products); err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return &InMemoryProductRepository{
		products: byID,
	}, nil
}

// GetAll returns all products ordered by ID
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	slices.SortFunc(products, func(a, b models.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product, exists := r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// LoadCatalogFile reads a JSON array of products.
func LoadCatalogFile(path string) ([]models.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return products, nil
}

// ValidateCatalog checks catalog integrity: unique positive IDs, parseable
// prices and unique file IDs per product. Bad price strings are caught here
// rather than at checkout.
func ValidateCatalog(products []models.Product) error {
	seen := make(map[int64]bool, len(products))
	for _, p := range products {
		if p.ID <= 0 {
			return fmt.Errorf("%w: product %q has non-positive id %d", ErrInvalidCatalog, p.Name, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate product id %d", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = true

		if _, err := pricing.ParsePrice(p.Price); err != nil {
			return fmt.Errorf("%w: product %d: %w", ErrInvalidCatalog, p.ID, err)
		}
		if p.OnSale() {
			if _, err := pricing.ParsePrice(p.SalePrice); err != nil {
				return fmt.Errorf("%w: product %d: %w", ErrInvalidCatalog, p.ID, err)
			}
		}

		fileIDs := make(map[string]bool)
		for _, f := range content.FlattenFiles(p.Modules) {
			if f.ID == "" || fileIDs[f.ID] {
				return fmt.Errorf("%w: product %d has a missing or duplicate file id %q", ErrInvalidCatalog, p.ID, f.ID)
			}
			fileIDs[f.ID] = true
			if !f.Type.Valid() {
				return fmt.Errorf("%w: product %d file %q has unknown type %q", ErrInvalidCatalog, p.ID, f.ID, string(f.Type))
			}
		}
	}
	return nil
}
