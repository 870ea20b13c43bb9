package monitor_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pelagos-finance/defi-indexer/monitor"
	"github.com/pelagos-finance/defi-indexer/units"
)

func TestVotingPower(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	locked := decimal.RequireFromString("1000")

	t.Run("full lock", func(t *testing.T) {
		t.Parallel()

		power, expired := monitor.VotingPower(locked, now.Add(units.MaxLockDuration), now)
		require.False(t, expired)
		requireDecimalEqual(t, "1000", power)
	})

	t.Run("half lock", func(t *testing.T) {
		t.Parallel()

		power, expired := monitor.VotingPower(locked, now.Add(units.MaxLockDuration/2), now)
		require.False(t, expired)
		requireDecimalEqual(t, "500", power)
	})

	t.Run("one year left", func(t *testing.T) {
		t.Parallel()

		power, expired := monitor.VotingPower(locked, now.Add(365*24*time.Hour), now)
		require.False(t, expired)
		requireDecimalEqual(t, "250", power)
	})

	t.Run("decay is monotonic", func(t *testing.T) {
		t.Parallel()

		end := now.Add(units.MaxLockDuration)
		prev := locked
		for d := 30 * 24 * time.Hour; d < units.MaxLockDuration; d += 200 * 24 * time.Hour {
			power, expired := monitor.VotingPower(locked, end, now.Add(d))
			require.False(t, expired)
			require.True(t, power.LessThan(prev), "power %s did not decay below %s", power, prev)
			prev = power
		}
	})

	t.Run("expired lock", func(t *testing.T) {
		t.Parallel()

		power, expired := monitor.VotingPower(locked, now.Add(-time.Second), now)
		require.True(t, expired)
		requireDecimalEqual(t, "0", power)
	})

	t.Run("expires exactly at the deadline", func(t *testing.T) {
		t.Parallel()

		power, expired := monitor.VotingPower(locked, now, now)
		require.True(t, expired)
		requireDecimalEqual(t, "0", power)
	})
}
