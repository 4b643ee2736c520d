package seriesync

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFlatCandles(t *testing.T) {
	t.Run("grid aligned window", func(t *testing.T) {
		out := FlatCandles(2.0, 900_000, 903_600, 15*time.Minute)
		require.Len(t, out, 5)
		require.Equal(t, int64(900_000), out[0].Time)
		require.Equal(t, int64(903_600), out[4].Time)
		for _, c := range out {
			require.True(t, c.Synthetic)
			require.Equal(t, strconv.FormatInt(c.Time, 10), c.ID)
			require.Equal(t, 2.0, c.Open)
			require.Equal(t, 2.0, c.High)
			require.Equal(t, 2.0, c.Low)
			require.Equal(t, 2.0, c.Close)
			require.Zero(t, c.Volume)
		}
	})

	t.Run("start snaps up to the grid", func(t *testing.T) {
		out := FlatCandles(1.0, 900_001, 903_600, 15*time.Minute)
		require.Len(t, out, 4)
		require.Equal(t, int64(900_900), out[0].Time)
	})

	t.Run("oversized windows keep the newest bars", func(t *testing.T) {
		out := FlatCandles(1.0, 0, 120_000, time.Minute)
		require.Len(t, out, maxSyntheticBars)
		require.Equal(t, int64(120_000), out[len(out)-1].Time)
		require.Equal(t, int64(60_060), out[0].Time)
	})

	t.Run("degenerate inputs yield nothing", func(t *testing.T) {
		require.Nil(t, FlatCandles(0, 900_000, 903_600, time.Minute))
		require.Nil(t, FlatCandles(1.0, 900_000, 903_600, 0))
		require.Nil(t, FlatCandles(1.0, 903_600, 900_000, time.Minute))
		require.Nil(t, FlatCandles(1.0, 0, 0, time.Minute))
	})
}
