package frequency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCapperAllowsUpToLimit(t *testing.T) {
	c := NewCapper(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, c.Allow("camp_1", "viewer_1"))
	}
	assert.False(t, c.Allow("camp_1", "viewer_1"))
	assert.Equal(t, 4, c.Count("camp_1", "viewer_1"))
}

func TestCapperIsPerViewerAndCampaign(t *testing.T) {
	c := NewCapper(1, time.Minute)

	assert.True(t, c.Allow("camp_1", "viewer_1"))
	assert.False(t, c.Allow("camp_1", "viewer_1"))

	assert.True(t, c.Allow("camp_1", "viewer_2"))
	assert.True(t, c.Allow("camp_2", "viewer_1"))
}

func TestCapperWindowExpires(t *testing.T) {
	c := NewCapper(1, 20*time.Millisecond)

	assert.True(t, c.Allow("camp_1", "viewer_1"))
	assert.False(t, c.Allow("camp_1", "viewer_1"))

	time.Sleep(40 * time.Millisecond)
	assert.True(t, c.Allow("camp_1", "viewer_1"))
}
