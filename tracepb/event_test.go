package tracepb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestEventRoundTripThroughWireBytes(t *testing.T) {
	want := Event{
		ID:        "corr-1",
		Direction: Outbound,
		Kind:      3,
		Summary:   "ConCapabilitiesGet",
		Payload:   []byte{0x01, 0x02},
		StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  150 * time.Millisecond,
	}

	resp := NewWatchResponseFor(want)
	raw, err := proto.Marshal(resp.raw)
	require.NoError(t, err)

	decoded := NewWatchResponse()
	require.NoError(t, proto.Unmarshal(raw, decoded.raw))

	got, err := decoded.Event()
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Direction, got.Direction)
	require.Equal(t, want.Kind, got.Kind)
	require.Equal(t, want.Summary, got.Summary)
	require.True(t, got.StartTime.Equal(want.StartTime))
	require.Equal(t, want.Duration, got.Duration)
}

func TestDirectionString(t *testing.T) {
	require.Equal(t, "inbound", Inbound.String())
	require.Equal(t, "outbound", Outbound.String())
}
