package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"

	"github.com/smoldb/smoldb/internal/errs"
)

// startBareServer runs a grpc.Server with no services registered,
// enough for ChannelPool to complete a blocking dial against.
func startBareServer(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return lis.Addr().String()
}

func TestChannelPool_GetOrCreateCachesConnection(t *testing.T) {
	addr := startBareServer(t)
	pool := NewChannelPool(time.Second)

	conn1, err := pool.GetOrCreate(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, connectivity.Ready, conn1.GetState())

	conn2, err := pool.GetOrCreate(context.Background(), addr)
	require.NoError(t, err)
	assert.Same(t, conn1, conn2, "a second call for the same uri must reuse the cached connection")
}

func TestChannelPool_DialFailureIsWrapped(t *testing.T) {
	pool := NewChannelPool(50 * time.Millisecond)
	_, err := pool.GetOrCreate(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
	assert.Equal(t, errs.TransportError, errs.KindOf(err))
}

func TestChannelPool_EvictForcesRedial(t *testing.T) {
	addr := startBareServer(t)
	pool := NewChannelPool(time.Second)

	conn1, err := pool.GetOrCreate(context.Background(), addr)
	require.NoError(t, err)

	pool.Evict(addr)

	conn2, err := pool.GetOrCreate(context.Background(), addr)
	require.NoError(t, err)
	assert.NotSame(t, conn1, conn2, "after eviction a fresh connection must be dialed")
}

func TestChannelPool_CloseAllClearsCache(t *testing.T) {
	addr := startBareServer(t)
	pool := NewChannelPool(time.Second)

	_, err := pool.GetOrCreate(context.Background(), addr)
	require.NoError(t, err)

	pool.CloseAll()
	assert.Empty(t, pool.channels)
}
