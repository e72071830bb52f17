package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Make string `json:"make"`
	Year int    `json:"year"`
}

func TestJSONRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewJSON(client, time.Minute)
	ctx := context.Background()
	key := KeyVIN(" 1hgcm82633a004352 ")
	require.Equal(t, "vin:1HGCM82633A004352", key)

	var got payload
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, key, payload{Make: "HONDA", Year: 2003}))
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, payload{Make: "HONDA", Year: 2003}, got)
	require.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestJSONCorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set("vin:X", "{not json"))

	var got payload
	hit, err := NewJSON(client, time.Minute).Get(context.Background(), "vin:X", &got)
	require.Error(t, err)
	require.False(t, hit)
}

func TestJSONNilClientMisses(t *testing.T) {
	c := NewJSON(nil, time.Minute)
	require.NoError(t, c.Set(context.Background(), "k", payload{}))
	require.NoError(t, c.Delete(context.Background(), "k"))
	hit, err := c.Get(context.Background(), "k", &payload{})
	require.NoError(t, err)
	require.False(t, hit)
}
