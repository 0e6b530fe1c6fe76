package coupon

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCouponCode = errors.New("coupon code is not valid")
	ErrInactiveCoupon    = errors.New("coupon is no longer active")
	ErrInvalidRecord     = errors.New("invalid coupon record")
)

// Status is the outcome of a coupon lookup.
type Status int

const (
	StatusNotFound Status = iota
	StatusInactive
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "not_found"
	case StatusInactive:
		return "inactive"
	case StatusValid:
		return "valid"
	}
	return "unknown"
}

// Result is returned by Validate. Coupon is set for StatusInactive and StatusValid.
type Result struct {
	Status Status
	Coupon *models.Coupon
}

// Err maps the result onto the coupon error taxonomy.
func (r Result) Err() error {
	switch r.Status {
	case StatusValid:
		return nil
	case StatusInactive:
		return ErrInactiveCoupon
	default:
		return ErrInvalidCouponCode
	}
}

// Catalog holds the known coupons keyed by normalized code. A bloom filter
// over the codes answers most misses without touching the map.
type Catalog struct {
	mu      sync.RWMutex
	coupons map[string]models.Coupon
	filter  *bloom.BloomFilter
	sources int
}

// sourceLoadResult holds the result of loading a single source
type sourceLoadResult struct {
	index   int
	coupons []models.Coupon
	err     error
}

// NewCatalog creates a catalog seeded with coupons.
func NewCatalog(coupons ...models.Coupon) *Catalog {
	c := &Catalog{}
	c.replace(coupons, 0)
	return c
}

// DefaultCoupons is the seed catalog used when no source is configured.
func DefaultCoupons() []models.Coupon {
	return []models.Coupon{
		{Code: "SAVE10", Type: models.CouponPercent, Value: decimal.NewFromInt(10), IsActive: true},
		{Code: "WELCOME25", Type: models.CouponPercent, Value: decimal.NewFromInt(25), IsActive: true},
		{Code: "FLAT200", Type: models.CouponFixed, Value: decimal.NewFromInt(200), IsActive: true},
		{Code: "MEGA2000", Type: models.CouponFixed, Value: decimal.NewFromInt(2000), IsActive: true},
		{Code: "DIWALI50", Type: models.CouponPercent, Value: decimal.NewFromInt(50), IsActive: false},
	}
}

// Normalize returns the lookup key for a coupon code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate looks a code up case-insensitively.
func (c *Catalog) Validate(code string) Result {
	key := Normalize(code)
	if key == "" {
		return Result{Status: StatusNotFound}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.filter.TestString(key) {
		return Result{Status: StatusNotFound}
	}

	coupon, ok := c.coupons[key]
	if !ok {
		return Result{Status: StatusNotFound}
	}
	if !coupon.IsActive {
		return Result{Status: StatusInactive, Coupon: &coupon}
	}
	return Result{Status: StatusValid, Coupon: &coupon}
}

// Len returns the number of coupons in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.coupons)
}

// GetStats returns statistics about loaded coupons
func (c *Catalog) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	for _, coupon := range c.coupons {
		if coupon.IsActive {
			active++
		}
	}

	return map[string]interface{}{
		"total_sources":  c.sources,
		"total_coupons":  len(c.coupons),
		"active_coupons": active,
	}
}

// LoadFromSources loads coupon records from http(s) URLs and local file
// paths concurrently.
func (c *Catalog) LoadFromSources(ctx context.Context, sources []string) error {
	return c.load(ctx, sources, loadSource)
}

func loadSource(ctx context.Context, source string) ([]models.Coupon, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return loadFromURL(ctx, source)
	}
	return loadFromFile(ctx, source)
}

// load fetches every source concurrently and swaps the catalog only if all
// of them succeed. Later sources override earlier ones for the same code.
func (c *Catalog) load(ctx context.Context, sources []string, fetch func(context.Context, string) ([]models.Coupon, error)) error {
	if len(sources) == 0 {
		return fmt.Errorf("no coupon sources provided")
	}

	resultChan := make(chan sourceLoadResult, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(index int, src string) {
			defer wg.Done()

			coupons, err := fetch(ctx, src)
			resultChan <- sourceLoadResult{
				index:   index,
				coupons: coupons,
				err:     err,
			}
		}(i, source)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining order
	results := make([]sourceLoadResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	var merged []models.Coupon
	for i, result := range results {
		if result.err != nil {
			return fmt.Errorf("failed to load coupon source %d: %w", i+1, result.err)
		}
		merged = append(merged, result.coupons...)
	}

	c.replace(merged, len(sources))
	return nil
}

func (c *Catalog) replace(coupons []models.Coupon, sources int) {
	byCode := make(map[string]models.Coupon, len(coupons))
	for _, coupon := range coupons {
		key := Normalize(coupon.Code)
		coupon.Code = key
		byCode[key] = coupon
	}

	filter := bloom.NewWithEstimates(uint(max(len(byCode), 1)), 0.001)
	for key := range byCode {
		filter.AddString(key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.coupons = byCode
	c.filter = filter
	c.sources = sources
}

// loadFromURL downloads and parses a coupon file from a URL
func loadFromURL(ctx context.Context, url string) ([]models.Coupon, error) {
	client := &http.Client{
		Timeout: 2 * time.Minute,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return parseSource(resp.Body)
}

func loadFromFile(ctx context.Context, path string) ([]models.Coupon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return parseSource(f)
}

// parseSource transparently decompresses gzip input before parsing.
func parseSource(r io.Reader) ([]models.Coupon, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(2)
	if err == nil && bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		gzReader, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		return parseCoupons(gzReader)
	}

	return parseCoupons(br)
}

// parseCoupons reads one JSON coupon record per line. Blank lines and lines
// starting with '#' are skipped.
func parseCoupons(r io.Reader) ([]models.Coupon, error) {
	var coupons []models.Coupon
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var coupon models.Coupon
		if err := json.Unmarshal([]byte(line), &coupon); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", lineNo, ErrInvalidRecord, err)
		}
		if err := validateRecord(coupon); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		coupons = append(coupons, coupon)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return coupons, nil
}

var hundred = decimal.NewFromInt(100)

func validateRecord(coupon models.Coupon) error {
	if Normalize(coupon.Code) == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidRecord)
	}
	if coupon.Value.IsNegative() {
		return fmt.Errorf("%w: %s has a negative value", ErrInvalidRecord, coupon.Code)
	}

	switch coupon.Type {
	case models.CouponFixed:
	case models.CouponPercent:
		if coupon.Value.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s exceeds 100 percent", ErrInvalidRecord, coupon.Code)
		}
	default:
		return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidRecord, coupon.Code, coupon.Type)
	}
	return nil
}
