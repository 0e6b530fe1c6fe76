package service

import (
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testProducts mirrors the pricing scenario: ₹500 and ₹300 items.
func testProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "E-Book", Price: "₹500", Category: "E-Book", Modules: []models.ContentModule{
			{ID: "m1", Files: []models.ProductFile{
				{ID: "f1", Name: "Chapter 1", Type: models.FileTypePDF, URL: "https://cdn.example.com/c1.pdf"},
			}, Modules: []models.ContentModule{
				{ID: "m1.1", Files: []models.ProductFile{
					{ID: "f2", Name: "Audio", Type: models.FileTypeAudio, URL: "https://cdn.example.com/a.mp3"},
				}},
			}},
		}},
		{ID: 2, Name: "Worksheet", Price: "₹400", SalePrice: "₹300", Category: "Bundle"},
	}
}

func testCoupons() *coupon.Catalog {
	return coupon.NewCatalog(
		models.Coupon{Code: "SAVE10", Type: models.CouponPercent, Value: decimal.NewFromInt(10), IsActive: true},
		models.Coupon{Code: "MEGA2000", Type: models.CouponFixed, Value: decimal.NewFromInt(2000), IsActive: true},
		models.Coupon{Code: "EXPIRED", Type: models.CouponFixed, Value: decimal.NewFromInt(50), IsActive: false},
	)
}

type fixture struct {
	products *ProductService
	carts    *CartService
	checkout *CheckoutService
	catalog  *coupon.Catalog
	ctrl     *cart.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo, err := repository.NewInMemoryProductRepository(testProducts()...)
	require.NoError(t, err)

	catalog := testCoupons()
	ctrl := cart.NewController(cart.NewMemoryStore())

	checkout, err := NewCheckoutService(ctrl, catalog, "https://pay.example.com/checkout", "₹")
	require.NoError(t, err)

	return &fixture{
		products: NewProductService(repo),
		carts:    NewCartService(ctrl, repo, catalog, "₹"),
		checkout: checkout,
		catalog:  catalog,
		ctrl:     ctrl,
	}
}
