package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_RoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(mr.Addr())
	defer c.Close()

	ctx := context.Background()

	_, hit, err := c.Get(ctx, "CPIAUCSL:2000-01-01")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "CPIAUCSL:2000-01-01", []byte(`{"observations":[]}`), time.Hour))

	payload, hit, err := c.Get(ctx, "CPIAUCSL:2000-01-01")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"observations":[]}`, string(payload))

	mr.FastForward(2 * time.Hour)
	_, hit, err = c.Get(ctx, "CPIAUCSL:2000-01-01")
	require.NoError(t, err)
	assert.False(t, hit, "entry expires after its TTL")
}

func TestNop_NeverHits(t *testing.T) {
	var c Nop
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Hour))
	_, hit, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, hit)
}
