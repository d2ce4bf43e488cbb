package job

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, false},
		{StatusProcessing, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusPending, false},
		{StatusFailed, StatusProcessing, false},
		{StatusFailed, StatusCompleted, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, ValidTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPlatformFee(t *testing.T) {
	require.Equal(t, uint64(0), PlatformFee(0))
	require.Equal(t, uint64(0), PlatformFee(33))   // rounds down
	require.Equal(t, uint64(1), PlatformFee(34))
	require.Equal(t, uint64(3), PlatformFee(100))
	require.Equal(t, uint64(30), PlatformFee(1000))
}
