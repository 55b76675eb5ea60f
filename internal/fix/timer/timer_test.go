package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolutionIsQuarterOfHeartBtInt(t *testing.T) {
	require.Equal(t, 7500*time.Millisecond, Resolution(30*time.Second))
}

func TestResolutionFloorsAtMinimum(t *testing.T) {
	require.Equal(t, minResolution, Resolution(1*time.Second))
	require.Equal(t, minResolution, Resolution(0))
}
