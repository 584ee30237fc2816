package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateBootstrapping:   "Bootstrapping",
		StateRequestingPeers: "RequestingPeers",
		StateLoneStart:       "LoneStart",
		StateRunning:         "Running",
		StateStopped:         "Stopped",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestState_UnknownValue(t *testing.T) {
	assert.Equal(t, "Unknown", State(99).String())
}
