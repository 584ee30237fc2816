package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointID_StringFormDisambiguatesVariants(t *testing.T) {
	intID := NewIntID(5)
	uuidID := NewUUIDID("5")

	assert.NotEqual(t, intID.StringForm(), uuidID.StringForm())
	assert.Equal(t, "i:5", intID.StringForm())
	assert.Equal(t, "u:5", uuidID.StringForm())
}

func TestPointID_HashIsStableAcrossCalls(t *testing.T) {
	id := NewIntID(42)
	assert.Equal(t, id.Hash(), id.Hash())

	other := NewUUIDID("42")
	assert.NotEqual(t, id.Hash(), other.Hash(), "Id(42) and Uuid(\"42\") must hash differently")
}

func TestPointID_Equal(t *testing.T) {
	assert.True(t, NewIntID(1).Equal(NewIntID(1)))
	assert.False(t, NewIntID(1).Equal(NewIntID(2)))
	assert.False(t, NewIntID(1).Equal(NewUUIDID("1")))
	assert.True(t, NewUUIDID("a").Equal(NewUUIDID("a")))
}

func TestPointID_JSONRoundTrip(t *testing.T) {
	for _, id := range []PointID{NewIntID(7), NewUUIDID("some-uuid")} {
		data, err := json.Marshal(id)
		require.NoError(t, err)

		var got PointID
		require.NoError(t, json.Unmarshal(data, &got))
		assert.True(t, id.Equal(got))
	}
}

func TestPointID_UnmarshalJSON_RejectsEmpty(t *testing.T) {
	var id PointID
	err := json.Unmarshal([]byte(``), &id)
	assert.Error(t, err)
}

func TestNewRandomPeerID_StaysWithinSafeRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewRandomPeerID()
		assert.LessOrEqual(t, id, MaxSafePeerID)
	}
}
