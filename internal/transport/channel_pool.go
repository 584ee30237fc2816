// Package transport manages outbound gRPC connections to peers, in the
// style of the teacher's internal/util/grpcclient.ClientBase: a
// cached connection per target, a read-lock fast path for the common
// case, and a write-lock on miss that re-checks before dialing, per
// spec.md §4.3's TransportChannelPool.
package transport

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/keepalive"

	"github.com/smoldb/smoldb/internal/errs"
	"github.com/smoldb/smoldb/internal/log"
)

const (
	defaultKeepAliveTime    = 10 * time.Second
	defaultKeepAliveTimeout = 3 * time.Second
)

// ChannelPool caches one *grpc.ClientConn per peer URI, so repeated
// RemoteShard calls to the same peer reuse a warm connection instead
// of dialing on every RPC.
type ChannelPool struct {
	connectTimeout time.Duration

	mu       sync.RWMutex
	channels map[string]*grpc.ClientConn
}

// NewChannelPool builds an empty pool that dials with connectTimeout.
func NewChannelPool(connectTimeout time.Duration) *ChannelPool {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	return &ChannelPool{
		connectTimeout: connectTimeout,
		channels:       make(map[string]*grpc.ClientConn),
	}
}

// GetOrCreate returns a connection to uri, dialing one if the pool
// has not seen this uri before.
func (p *ChannelPool) GetOrCreate(ctx context.Context, uri string) (*grpc.ClientConn, error) {
	p.mu.RLock()
	if conn, ok := p.channels[uri]; ok {
		p.mu.RUnlock()
		return conn, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.channels[uri]; ok {
		return conn, nil
	}

	conn, err := p.dial(ctx, uri)
	if err != nil {
		return nil, errs.Wrapf(errs.TransportError, err, "transport: dialing %s", uri)
	}
	p.channels[uri] = conn
	return conn, nil
}

func (p *ChannelPool) dial(ctx context.Context, uri string) (*grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, p.connectTimeout)
	defer cancel()

	return grpc.DialContext(
		dialCtx,
		uri,
		grpc.WithInsecure(),
		grpc.WithBlock(),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                defaultKeepAliveTime,
			Timeout:             defaultKeepAliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  100 * time.Millisecond,
				Multiplier: 1.6,
				Jitter:     0.2,
				MaxDelay:   3 * time.Second,
			},
			MinConnectTimeout: p.connectTimeout,
		}),
	)
}

// Evict closes and forgets the connection for uri, if any is cached.
// Used after an RPC call fails, so the next call re-dials rather than
// reusing a connection that is known bad.
func (p *ChannelPool) Evict(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, ok := p.channels[uri]
	if !ok {
		return
	}
	if err := conn.Close(); err != nil {
		log.Warn("transport: closing evicted channel", zap.String("uri", uri), zap.Error(err))
	}
	delete(p.channels, uri)
}

// CloseAll closes every cached connection, for clean shutdown.
func (p *ChannelPool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for uri, conn := range p.channels {
		if err := conn.Close(); err != nil {
			log.Warn("transport: closing channel", zap.String("uri", uri), zap.Error(err))
		}
	}
	p.channels = make(map[string]*grpc.ClientConn)
}
