package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pelagos-finance/defi-indexer/analytics"
	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
)

type fakeCollateralPositionsRepo struct {
	positions map[common.Address][]*entity.CollateralPosition
}

func (r *fakeCollateralPositionsRepo) Upsert(ctx context.Context, pos *entity.CollateralPosition) error {
	panic("not implemented")
}

func (r *fakeCollateralPositionsRepo) Delete(ctx context.Context, user, asset common.Address) error {
	panic("not implemented")
}

func (r *fakeCollateralPositionsRepo) FindByUser(ctx context.Context, user common.Address) ([]*entity.CollateralPosition, error) {
	return r.positions[user], nil
}

func (r *fakeCollateralPositionsRepo) FindUsers(ctx context.Context) ([]common.Address, error) {
	users := make([]common.Address, 0, len(r.positions))
	for user := range r.positions {
		users = append(users, user)
	}
	return users, nil
}

type fakeHealthSnapshotsRepo struct {
	snapshots []*entity.HealthSnapshot
}

func (r *fakeHealthSnapshotsRepo) Insert(ctx context.Context, snapshot *entity.HealthSnapshot) error {
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *fakeHealthSnapshotsRepo) FindByUserSince(ctx context.Context, user common.Address, since time.Time) ([]*entity.HealthSnapshot, error) {
	panic("not implemented")
}

type fakeNotifier struct {
	warnings []*analytics.HealthWarning
}

func (n *fakeNotifier) Notify(ctx context.Context, warning *analytics.HealthWarning) error {
	n.warnings = append(n.warnings, warning)
	return nil
}

func TestAggregateHealthFactor(t *testing.T) {
	t.Parallel()

	positions := []*entity.CollateralPosition{
		{DebtUSD: decimal.RequireFromString("1000"), HealthFactor: decimal.RequireFromString("1.2")},
		{DebtUSD: decimal.RequireFromString("1000"), HealthFactor: decimal.RequireFromString("0.5")},
	}
	requireDecimalEqual(t, "1.7", analytics.AggregateHealthFactor(positions))

	noDebt := []*entity.CollateralPosition{
		{DebtUSD: decimal.Zero, HealthFactor: decimal.RequireFromString("999999")},
	}
	requireDecimalEqual(t, "999999", analytics.AggregateHealthFactor(noDebt))
}

func TestHealthMonitorEdgeTriggeredWarnings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	user := common.HexToAddress("0x2000000000000000000000000000000000000001")
	positionsRepo := &fakeCollateralPositionsRepo{
		positions: map[common.Address][]*entity.CollateralPosition{user: nil},
	}
	snapshotsRepo := &fakeHealthSnapshotsRepo{}
	notifier := &fakeNotifier{}
	risk := &config.RiskConfig{
		WarningThreshold:     config.Decimal{Decimal: decimal.RequireFromString("1.5")},
		LiquidationThreshold: config.Decimal{Decimal: decimal.RequireFromString("1")},
	}
	monitor := analytics.NewHealthMonitor(logging.New(), &repository.Repo{
		CollateralPositions: positionsRepo,
		HealthSnapshots:     snapshotsRepo,
	}, risk, notifier)

	setHealthFactor := func(hf string) {
		positionsRepo.positions[user] = []*entity.CollateralPosition{{
			UserAddress:  user,
			DebtUSD:      decimal.RequireFromString("1000"),
			HealthFactor: decimal.RequireFromString(hf),
		}}
	}

	// first drop below the threshold warns exactly once
	setHealthFactor("1.2")
	require.NoError(t, monitor.Sweep(ctx))
	require.NoError(t, monitor.Sweep(ctx))
	require.Len(t, notifier.warnings, 1)
	require.Equal(t, analytics.SeverityWarning, notifier.warnings[0].Severity)

	// recovery re-arms the warning
	setHealthFactor("1.8")
	require.NoError(t, monitor.Sweep(ctx))
	require.Len(t, notifier.warnings, 1)

	// dropping below the liquidation threshold is critical
	setHealthFactor("0.9")
	require.NoError(t, monitor.Sweep(ctx))
	require.Len(t, notifier.warnings, 2)
	require.Equal(t, analytics.SeverityCritical, notifier.warnings[1].Severity)

	// every sweep with open positions records a snapshot
	require.Len(t, snapshotsRepo.snapshots, 4)
}
