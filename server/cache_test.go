package server

import (
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"

	"github.com/chaos-io/pixel3d/pipeline"
)

func TestCache(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Unix(1000, 0)}
	c := newCache(time.Minute, clk.Now)

	a, b := ksuid.New(), ksuid.New()
	c.put(a, &pipeline.Result{})
	clk.Advance(30 * time.Second)
	c.put(b, &pipeline.Result{})

	_, ok := c.get(a)
	assert.True(t, ok)
	_, ok = c.get(ksuid.New())
	assert.False(t, ok)

	clk.Advance(30 * time.Second)
	_, ok = c.get(a)
	assert.False(t, ok, "expired entries are not served")
	_, ok = c.get(b)
	assert.True(t, ok)

	assert.Equal(t, 1, c.purge())
	assert.Equal(t, 1, c.len())

	clk.Advance(time.Minute)
	assert.Equal(t, 1, c.purge())
	assert.Zero(t, c.len())
}
