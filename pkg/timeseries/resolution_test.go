package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseResolution(t *testing.T) {
	t.Run("known labels", func(t *testing.T) {
		d, err := ParseResolution("15m")
		require.NoError(t, err)
		require.Equal(t, 15*time.Minute, d)

		d, err = ParseResolution(" 1D ")
		require.NoError(t, err)
		require.Equal(t, 24*time.Hour, d)
	})

	t.Run("unknown label", func(t *testing.T) {
		_, err := ParseResolution("7m")
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported resolution")
	})
}

func TestResolutionsSorted(t *testing.T) {
	labels := Resolutions()
	require.Equal(t, "1m", labels[0])
	require.Equal(t, "1w", labels[len(labels)-1])
}
