package network

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTransport(t *testing.T) (*miniredis.Miniredis, *RedisTransport) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	transport := NewRedisTransportWithClient(client, "dashboard:", nil)
	t.Cleanup(func() { transport.Close() })
	return mr, transport
}

func TestRedisTransportReadsStoredTreeThenUpdates(t *testing.T) {
	mr, transport := newRedisTransport(t)
	require.NoError(t, mr.Set("dashboard:/", `{"updated_at":"stored"}`))

	values := make(chan string, 10)
	stop, err := transport.Listen(context.Background(), "/", func(raw []byte) { values <- string(raw) }, func(error) {})
	require.NoError(t, err)
	defer stop()

	assert.Equal(t, `{"updated_at":"stored"}`, receive(t, values))

	require.Eventually(t, func() bool {
		return mr.Publish("dashboard:/", `{"updated_at":"pushed"}`) > 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, `{"updated_at":"pushed"}`, receive(t, values))
}

func TestRedisTransportWithoutStoredTree(t *testing.T) {
	mr, transport := newRedisTransport(t)

	values := make(chan string, 10)
	stop, err := transport.Listen(context.Background(), "/", func(raw []byte) { values <- string(raw) }, func(error) {})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return mr.Publish("dashboard:/", `{"portfolio_list":["NVDA"]}`) > 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, `{"portfolio_list":["NVDA"]}`, receive(t, values))

	stop()
	stop()
	mr.Publish("dashboard:/", `{"updated_at":"late"}`)
	select {
	case v := <-values:
		t.Fatalf("unexpected value after stop: %s", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisTransportUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	transport := NewRedisTransportWithClient(client, "", nil)
	defer transport.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := transport.Listen(ctx, "/", func([]byte) {}, func(error) {})
	assert.Error(t, err)
}
