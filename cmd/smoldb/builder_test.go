package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smoldb/smoldb/internal/types"
)

func TestParseCollectionParams_Empty(t *testing.T) {
	shards, replicas, err := parseCollectionParams("")
	require.NoError(t, err)
	assert.Equal(t, 0, shards)
	assert.Nil(t, replicas)
}

func TestParseCollectionParams_ShardsAndReplicas(t *testing.T) {
	shards, replicas, err := parseCollectionParams("shards=8&replicas=2,3")
	require.NoError(t, err)
	assert.Equal(t, 8, shards)
	assert.Equal(t, []types.PeerID{2, 3}, replicas)
}

func TestParseCollectionParams_RejectsBadShardCount(t *testing.T) {
	_, _, err := parseCollectionParams("shards=not-a-number")
	assert.Error(t, err)
}

func TestParseCollectionParams_RejectsBadReplicaID(t *testing.T) {
	_, _, err := parseCollectionParams("replicas=abc")
	assert.Error(t, err)
}
