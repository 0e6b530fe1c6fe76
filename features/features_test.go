package features

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/viewer"
	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

const sessionID = "feature-session"

var samplePDF = []byte("%PDF-1.4\n1 0 obj <<>> endobj\n%%EOF\n")

type storefrontTestContext struct {
	products []models.Product
	carts    *service.CartService
	checkout *service.CheckoutService
	view     service.CartView
	order    *models.Order
	err      error

	files     map[string]models.ProductFile
	resources *viewer.ResourceStore
	viewer    *viewer.Viewer
	snapshot  viewer.Snapshot
}

func (c *storefrontTestContext) reset() {
	c.products = nil
	c.carts = nil
	c.checkout = nil
	c.view = service.CartView{}
	c.order = nil
	c.err = nil

	c.files = make(map[string]models.ProductFile)
	c.resources = viewer.NewResourceStore("/api/resources")
	c.viewer = viewer.New(c.resources, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.snapshot = viewer.Snapshot{}
}

func (c *storefrontTestContext) aCatalogWithProducts(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		c.products = append(c.products, models.Product{
			ID:        id,
			Name:      row.Cells[1].Value,
			Price:     row.Cells[2].Value,
			SalePrice: row.Cells[3].Value,
		})
	}
	return nil
}

func (c *storefrontTestContext) anEmptyCart() error {
	repo, err := repository.NewInMemoryProductRepository(c.products...)
	if err != nil {
		return err
	}

	catalog := coupon.NewCatalog(coupon.DefaultCoupons()...)
	controller := cart.NewController(cart.NewMemoryStore())

	c.carts = service.NewCartService(controller, repo, catalog, "₹")
	c.checkout, err = service.NewCheckoutService(controller, catalog, "https://pay.example.com/checkout", "₹")
	return err
}

func (c *storefrontTestContext) iAddOfProduct(qty int, productID int64) error {
	view, err := c.carts.AddItem(context.Background(), sessionID, productID, qty)
	if err != nil {
		return err
	}
	c.view = view
	return nil
}

func (c *storefrontTestContext) iApplyCoupon(code string) error {
	view, err := c.carts.ApplyCoupon(context.Background(), sessionID, code)
	c.err = err
	if err == nil {
		c.view = view
	}
	return nil
}

func (c *storefrontTestContext) iCheckOut() error {
	order, err := c.checkout.Checkout(context.Background(), sessionID)
	if err != nil {
		return err
	}
	c.order = order
	return nil
}

func expectAmount(name string, got decimal.Decimal, want string) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !got.Equal(w) {
		return fmt.Errorf("expected %s %s, got %s", name, want, got)
	}
	return nil
}

func (c *storefrontTestContext) theSubtotalIs(want string) error {
	return expectAmount("subtotal", c.view.Quote.Subtotal, want)
}

func (c *storefrontTestContext) theDiscountIs(want string) error {
	if c.err != nil {
		return c.err
	}
	return expectAmount("discount", c.view.Quote.Discount, want)
}

func (c *storefrontTestContext) theTotalIs(want string) error {
	return expectAmount("total", c.view.Quote.Total, want)
}

func (c *storefrontTestContext) theDisplayedTotalIs(want string) error {
	if c.view.Display.Total != want {
		return fmt.Errorf("expected displayed total %q, got %q", want, c.view.Display.Total)
	}
	return nil
}

func (c *storefrontTestContext) theAppliedCouponIs(code string) error {
	view, err := c.carts.GetCart(context.Background(), sessionID)
	if err != nil {
		return err
	}
	if view.Coupon == nil || view.Coupon.Code != code {
		return fmt.Errorf("expected coupon %q, got %+v", code, view.Coupon)
	}
	return nil
}

func (c *storefrontTestContext) theCouponIsRejectedAsInactive() error {
	if !errors.Is(c.err, coupon.ErrInactiveCoupon) {
		return fmt.Errorf("expected inactive coupon error, got %v", c.err)
	}
	return nil
}

func (c *storefrontTestContext) thePaymentLinkAmountIs(want string) error {
	link, err := url.Parse(c.order.PaymentURL)
	if err != nil {
		return err
	}
	if got := link.Query().Get("amount"); got != want {
		return fmt.Errorf("expected amount %q, got %q", want, got)
	}
	return nil
}

func (c *storefrontTestContext) theCartIsEmpty() error {
	view, err := c.carts.GetCart(context.Background(), sessionID)
	if err != nil {
		return err
	}
	if len(view.Items) != 0 || view.Coupon != nil {
		return fmt.Errorf("expected empty cart, got %+v", view)
	}
	return nil
}

func (c *storefrontTestContext) anEmbeddedPDFFile(id string) error {
	c.files[id] = models.ProductFile{ID: id, Name: id, Type: models.FileTypePDF, URL: viewer.EncodeDataURI("application/pdf", samplePDF)}
	return nil
}

func (c *storefrontTestContext) aRemotePDFFileAt(id, u string) error {
	c.files[id] = models.ProductFile{ID: id, Name: id, Type: models.FileTypePDF, URL: u}
	return nil
}

func (c *storefrontTestContext) iSelectFile(id string) error {
	file, ok := c.files[id]
	if !ok {
		return fmt.Errorf("unknown file %q", id)
	}
	// Resolution failures are observed through the viewer state.
	c.snapshot, c.err = c.viewer.Select(file)
	return nil
}

func (c *storefrontTestContext) iClearTheViewer() error {
	c.snapshot = c.viewer.Clear()
	return nil
}

func (c *storefrontTestContext) iCloseTheViewer() error {
	c.viewer.Close()
	return nil
}

func (c *storefrontTestContext) theViewerIs(state string) error {
	if got := c.viewer.Snapshot().State; string(got) != state {
		return fmt.Errorf("expected viewer %q, got %q", state, got)
	}
	return nil
}

func (c *storefrontTestContext) theViewerSourceIs(u string) error {
	snap := c.viewer.Snapshot()
	if snap.Source == nil || snap.Source.URL != u {
		return fmt.Errorf("expected source %q, got %+v", u, snap.Source)
	}
	return nil
}

func (c *storefrontTestContext) resourcesAreLive(n int) error {
	if got := c.resources.Len(); got != n {
		return fmt.Errorf("expected %d live resources, got %d", n, got)
	}
	return nil
}

func (c *storefrontTestContext) exactlyResourcesWereReleased(n int) error {
	if got := c.resources.Stats().Revoked; got != uint64(n) {
		return fmt.Errorf("expected %d released resources, got %d", n, got)
	}
	return nil
}

func (c *storefrontTestContext) theResourceBytesMatchFile(id string) error {
	snap := c.viewer.Snapshot()
	if snap.Source == nil || snap.Source.Resource == nil {
		return fmt.Errorf("viewer holds no resource")
	}

	_, data, ok := c.resources.Open(snap.Source.Resource.ID)
	if !ok {
		return fmt.Errorf("resource %s is not live", snap.Source.Resource.ID)
	}

	_, want, err := viewer.DecodeDataURI(c.files[id].URL)
	if err != nil {
		return err
	}
	if !bytes.Equal(data, want) {
		return fmt.Errorf("resource bytes differ from file %q", id)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a catalog with products:$`, tc.aCatalogWithProducts)
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^an embedded PDF file "([^"]*)"$`, tc.anEmbeddedPDFFile)
	ctx.Step(`^a remote PDF file "([^"]*)" at "([^"]*)"$`, tc.aRemotePDFFileAt)
	ctx.Step(`^a PDF file "([^"]*)" with url "([^"]*)"$`, tc.aRemotePDFFileAt)

	// When steps
	ctx.Step(`^I add (\d+) of product (\d+)$`, tc.iAddOfProduct)
	ctx.Step(`^I apply coupon "([^"]*)"$`, tc.iApplyCoupon)
	ctx.Step(`^I check out$`, tc.iCheckOut)
	ctx.Step(`^I select file "([^"]*)"$`, tc.iSelectFile)
	ctx.Step(`^I clear the viewer$`, tc.iClearTheViewer)
	ctx.Step(`^I close the viewer$`, tc.iCloseTheViewer)

	// Then steps
	ctx.Step(`^the subtotal is (\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the discount is (\d+)$`, tc.theDiscountIs)
	ctx.Step(`^the total is (\d+)$`, tc.theTotalIs)
	ctx.Step(`^the displayed total is "([^"]*)"$`, tc.theDisplayedTotalIs)
	ctx.Step(`^the applied coupon is "([^"]*)"$`, tc.theAppliedCouponIs)
	ctx.Step(`^the coupon is rejected as inactive$`, tc.theCouponIsRejectedAsInactive)
	ctx.Step(`^the payment link amount is "([^"]*)"$`, tc.thePaymentLinkAmountIs)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the viewer is "([^"]*)"$`, tc.theViewerIs)
	ctx.Step(`^the viewer source is "([^"]*)"$`, tc.theViewerSourceIs)
	ctx.Step(`^(\d+) resources? (?:is|are) live$`, tc.resourcesAreLive)
	ctx.Step(`^exactly (\d+) resources? (?:was|were) released$`, tc.exactlyResourcesWereReleased)
	ctx.Step(`^the resource bytes match file "([^"]*)"$`, tc.theResourceBytesMatchFile)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart_pricing.feature", "viewer.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
