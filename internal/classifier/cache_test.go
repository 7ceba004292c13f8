package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"moderd/pkg/types"
)

func TestResultCacheRoundTrip(t *testing.T) {
	c := newResultCache(time.Minute)
	_, ok := c.get("missing")
	assert.False(t, ok)

	want := types.Classification{Recommendation: types.RecommendationKeep}
	c.put("hola", want)
	got, ok := c.get("hola")
	assert.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, c.len())
}

func TestResultCacheExpiry(t *testing.T) {
	c := newResultCache(10 * time.Millisecond)
	c.put("hola", types.Classification{})
	time.Sleep(20 * time.Millisecond)
	_, ok := c.get("hola")
	assert.False(t, ok)
}

func TestResultCacheDisabled(t *testing.T) {
	c := newResultCache(0)
	assert.Nil(t, c)
	// nil receiver must be safe
	c.put("hola", types.Classification{})
	_, ok := c.get("hola")
	assert.False(t, ok)
	assert.Equal(t, 0, c.len())
}
