package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/content"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/pricing"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
)

var ErrFileNotFound = errors.New("file not found")

// ProductView is a product as listed in the storefront. Content trees are
// served separately through ListFiles.
type ProductView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	SalePrice   string `json:"salePrice,omitempty"`
	UnitPrice   string `json:"unitPrice"`
	Category    string `json:"category"`
	FileCount   int    `json:"fileCount"`
	ModuleCount int    `json:"moduleCount"`
}

// ProductService handles business logic for products and their files
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns all available products
func (s *ProductService) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		v, err := newProductView(p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*ProductView, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v, err := newProductView(*p)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListFiles returns the product's files flattened depth first.
func (s *ProductService) ListFiles(ctx context.Context, productID int64) ([]models.ProductFile, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return content.FlattenFiles(p.Modules), nil
}

// GetFile returns one of the product's files.
func (s *ProductService) GetFile(ctx context.Context, productID int64, fileID string) (models.ProductFile, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return models.ProductFile{}, err
	}

	f, ok := content.FindFile(p.Modules, fileID)
	if !ok {
		return models.ProductFile{}, ErrFileNotFound
	}
	return f, nil
}

func newProductView(p models.Product) (ProductView, error) {
	unit, err := pricing.UnitPrice(p)
	if err != nil {
		return ProductView{}, fmt.Errorf("product %d: %w", p.ID, err)
	}

	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		UnitPrice:   unit.String(),
		Category:    p.Category,
		FileCount:   len(content.FlattenFiles(p.Modules)),
		ModuleCount: content.CountModules(p.Modules),
	}, nil
}
