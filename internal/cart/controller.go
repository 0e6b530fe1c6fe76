package cart

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// ErrSessionEnded is returned by Update for a session whose cart was
// discarded and not revived since.
var ErrSessionEnded = errors.New("session has ended")

const (
	lockStripes = 64

	// tombstoneTTL bounds how long a discarded session refuses writes. It
	// only has to outlive requests that were in flight when it ended.
	tombstoneTTL = 10 * time.Minute
)

// Controller owns every cart snapshot. Mutations are load, transform and
// replace under a per-session lock, so concurrent requests for one session
// never interleave and readers only ever see whole snapshots.
type Controller struct {
	store Store
	locks [lockStripes]sync.Mutex
	now   func() time.Time

	endedMu sync.Mutex
	ended   map[string]time.Time
}

// NewController creates a controller over store.
func NewController(store Store) *Controller {
	return &Controller{
		store: store,
		now:   time.Now,
		ended: make(map[string]time.Time),
	}
}

// Get returns the current snapshot for a session.
func (c *Controller) Get(ctx context.Context, sessionID string) (models.Cart, error) {
	return c.store.Load(ctx, sessionID)
}

// Update applies fn to the current snapshot and stores the result. If fn
// fails nothing is stored and the current snapshot is returned with the error.
func (c *Controller) Update(ctx context.Context, sessionID string, fn func(models.Cart) (models.Cart, error)) (models.Cart, error) {
	mu := c.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if c.isEnded(sessionID) {
		return models.Cart{}, ErrSessionEnded
	}

	current, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return models.Cart{}, err
	}

	next, err := fn(current)
	if err != nil {
		return current, err
	}

	if err := c.store.Save(ctx, sessionID, next); err != nil {
		return current, err
	}
	return next, nil
}

// Discard removes the session's cart entirely. Later updates for the session
// fail with ErrSessionEnded until Revive is called.
func (c *Controller) Discard(ctx context.Context, sessionID string) error {
	mu := c.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	c.markEnded(sessionID)
	return c.store.Delete(ctx, sessionID)
}

// Revive accepts updates for a session ID again after Discard.
func (c *Controller) Revive(sessionID string) {
	c.endedMu.Lock()
	defer c.endedMu.Unlock()
	delete(c.ended, sessionID)
}

func (c *Controller) markEnded(sessionID string) {
	c.endedMu.Lock()
	defer c.endedMu.Unlock()

	now := c.now()
	for id, at := range c.ended {
		if now.Sub(at) > tombstoneTTL {
			delete(c.ended, id)
		}
	}
	c.ended[sessionID] = now
}

func (c *Controller) isEnded(sessionID string) bool {
	c.endedMu.Lock()
	defer c.endedMu.Unlock()

	at, ok := c.ended[sessionID]
	return ok && c.now().Sub(at) <= tombstoneTTL
}

// Close releases the underlying store.
func (c *Controller) Close() error {
	return c.store.Close()
}

func (c *Controller) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &c.locks[h.Sum32()%lockStripes]
}
