package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/session"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/viewer"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n%test\n%%EOF\n")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Handbook", Price: "₹500", Category: "E-Book", Modules: []models.ContentModule{
			{ID: "m1", Title: "Chapters", Files: []models.ProductFile{
				{ID: "sample", Name: "Sample Chapter", Type: models.FileTypePDF, URL: viewer.EncodeDataURI("application/pdf", pdfBytes)},
				{ID: "remote", Name: "Full Book", Type: models.FileTypePDF, URL: "https://cdn.example.com/book.pdf"},
			}, Modules: []models.ContentModule{
				{ID: "m1.1", Title: "Extras", Files: []models.ProductFile{
					{ID: "notes", Name: "notes.txt", Type: models.FileTypeOther, URL: viewer.EncodeDataURI("text/plain", []byte("hello"))},
					{ID: "broken", Name: "Broken", Type: models.FileTypePDF, URL: "data:application/pdf;base64,@@@"},
				}},
			}},
		}},
		{ID: 2, Name: "Worksheet", Price: "₹300", Category: "Bundle"},
	}
}

// testEnv wires the services behind a router with a fixed session, the way
// the application does minus the cookie layer.
type testEnv struct {
	router      chi.Router
	cartHandler *CartHandler
	resources   *viewer.ResourceStore
	sessions    *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testLogger()

	repo, err := repository.NewInMemoryProductRepository(testProducts()...)
	require.NoError(t, err)

	catalog := coupon.NewCatalog(coupon.DefaultCoupons()...)
	carts := cart.NewController(cart.NewMemoryStore())
	resources := viewer.NewResourceStore("/api/resources")
	sessions := session.NewManager(resources, carts, time.Hour, log)

	products := service.NewProductService(repo)
	checkout, err := service.NewCheckoutService(carts, catalog, "https://pay.example.com/checkout", "₹")
	require.NoError(t, err)

	productHandler := NewProductHandler(products, resources, log)
	cartHandler := NewCartHandler(service.NewCartService(carts, repo, catalog, "₹"), log)
	checkoutHandler := NewCheckoutHandler(checkout, log)
	viewerHandler := NewViewerHandler(products, resources, log)

	r := chi.NewRouter()
	r.Get("/api/product", productHandler.ListProducts)
	r.Get("/api/product/{productId}", productHandler.GetProduct)
	r.Get("/api/product/{productId}/files", productHandler.ListFiles)
	r.Get("/api/product/{productId}/files/{fileId}/download", productHandler.DownloadFile)
	r.Get("/api/resources/{resourceId}", viewerHandler.ServeResource)
	r.Get("/api/admin/resources", viewerHandler.ResourceStats)

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				sid := req.Header.Get("X-Test-Session")
				if sid == "" {
					sid = "test-session"
				}
				sess, err := sessions.Acquire(sid)
				if err != nil {
					http.Error(w, err.Error(), http.StatusServiceUnavailable)
					return
				}
				next.ServeHTTP(w, req.WithContext(session.NewContext(req.Context(), sess)))
			})
		})
		r.Get("/api/cart", cartHandler.GetCart)
		r.Post("/api/cart/items", cartHandler.AddItem)
		r.Put("/api/cart/items/{productId}", cartHandler.SetQuantity)
		r.Post("/api/cart/items/{productId}/decrement", cartHandler.Decrement)
		r.Delete("/api/cart/items/{productId}", cartHandler.RemoveItem)
		r.Post("/api/cart/coupon", cartHandler.ApplyCoupon)
		r.Delete("/api/cart/coupon", cartHandler.RemoveCoupon)
		r.Post("/api/checkout", checkoutHandler.Checkout)
		r.Post("/api/viewer", viewerHandler.Select)
		r.Get("/api/viewer", viewerHandler.Get)
		r.Delete("/api/viewer", viewerHandler.Clear)
	})

	return &testEnv{router: r, cartHandler: cartHandler, resources: resources, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}
