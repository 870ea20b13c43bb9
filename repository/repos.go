package repository

import (
	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/repository/postgres"
)

type Repo struct {
	ScanCursors         entity.ScanCursorsRepo
	LiquidityPositions  entity.LiquidityPositionsRepo
	CollateralPositions entity.CollateralPositionsRepo
	VeNFTLocks          entity.VeNFTLocksRepo
	HistoricalAPRs      entity.HistoricalAPRsRepo
	HistoricalRewards   entity.HistoricalRewardsRepo
	HealthSnapshots     entity.HealthSnapshotsRepo
	TaskVerifications   entity.TaskVerificationsRepo
}

func NewRepo(db *db.DB) *Repo {
	return &Repo{
		ScanCursors:         postgres.NewScanCursorsRepo("scan_cursors", db),
		LiquidityPositions:  postgres.NewLiquidityPositionsRepo("liquidity_positions", db),
		CollateralPositions: postgres.NewCollateralPositionsRepo("collateral_positions", db),
		VeNFTLocks:          postgres.NewVeNFTLocksRepo("venft_locks", db),
		HistoricalAPRs:      postgres.NewHistoricalAPRsRepo("historical_aprs", db),
		HistoricalRewards:   postgres.NewHistoricalRewardsRepo("historical_rewards", db),
		HealthSnapshots:     postgres.NewHealthSnapshotsRepo("health_snapshots", db),
		TaskVerifications:   postgres.NewTaskVerificationsRepo("task_verifications", db),
	}
}
