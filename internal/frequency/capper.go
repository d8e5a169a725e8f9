package frequency

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Capper enforces a per-viewer impression cap for a campaign over a rolling
// window. Counters live in an in-process cache and expire with the window,
// so the cap is best-effort across replicas.
type Capper struct {
	cache  *cache.Cache
	limit  int
	window time.Duration
}

// NewCapper creates a frequency capper with the given per-window limit
func NewCapper(limit int, window time.Duration) *Capper {
	return &Capper{
		cache:  cache.New(window, 2*window),
		limit:  limit,
		window: window,
	}
}

func (c *Capper) key(campaignID, viewerID string) string {
	return fmt.Sprintf("%s:%s", campaignID, viewerID)
}

// Allow records an impression for the viewer and reports whether it was
// within the cap. The first call for a (campaign, viewer) pair starts the
// window.
func (c *Capper) Allow(campaignID, viewerID string) bool {
	key := c.key(campaignID, viewerID)

	count, err := c.cache.IncrementInt(key, 1)
	if err != nil {
		c.cache.Set(key, 1, c.window)
		return c.limit >= 1
	}
	return count <= c.limit
}

// Count returns the viewer's current impression count within the window
func (c *Capper) Count(campaignID, viewerID string) int {
	if v, ok := c.cache.Get(c.key(campaignID, viewerID)); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}
