package peers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smoldb/smoldb/internal/types"
)

func TestRegistry_SeededWithSelf(t *testing.T) {
	r := NewRegistry(1, "127.0.0.1:6335")

	uri, err := r.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6335", uri)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_PutAndResolve(t *testing.T) {
	r := NewRegistry(1, "127.0.0.1:6335")
	r.Put(2, "127.0.0.1:6336")

	uri, err := r.Resolve(2)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6336", uri)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ResolveUnknownFails(t *testing.T) {
	r := NewRegistry(1, "127.0.0.1:6335")
	_, err := r.Resolve(99)
	assert.Error(t, err)
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(1, "127.0.0.1:6335")
	r.Put(2, "127.0.0.1:6336")
	r.Remove(2)

	_, err := r.Resolve(2)
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_AllReturnsIndependentSnapshot(t *testing.T) {
	r := NewRegistry(1, "127.0.0.1:6335")
	snapshot := r.All()
	snapshot[types.PeerID(2)] = "should-not-leak-back"

	_, err := r.Resolve(2)
	assert.Error(t, err, "mutating the snapshot must not affect the registry")
}
