package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/units"
)

var (
	oneHundred   = decimal.NewFromInt(100)
	daysPerYear  = decimal.NewFromInt(365)
	weeksPerYear = decimal.NewFromInt(52)
)

// APRRecorder takes hourly APR snapshots for every configured pool. Snapshots
// are keyed by the hour, so a re-run within the same hour is a no-op.
type APRRecorder struct {
	logger   logging.Logger
	repo     *repository.Repo
	registry *contract.Registry
	pools    []*config.PoolConfig
	oracle   *config.OracleConfig
	stables  map[common.Address]bool
	now      func() time.Time
}

func NewAPRRecorder(logger logging.Logger, repo *repository.Repo, registry *contract.Registry, cfg *config.Config) *APRRecorder {
	return &APRRecorder{
		logger:   logger,
		repo:     repo,
		registry: registry,
		pools:    cfg.Pools,
		oracle:   cfg.Oracle,
		stables:  cfg.StablecoinSet,
		now:      time.Now,
	}
}

// RecordSnapshots writes one snapshot per pool. A failing pool is logged and
// skipped so that the remaining pools still get their snapshot.
func (r *APRRecorder) RecordSnapshots(ctx context.Context) error {
	snapshotAt := r.now().UTC().Truncate(time.Hour)
	for _, pool := range r.pools {
		if err := r.recordPool(ctx, pool, snapshotAt); err != nil {
			r.logger.WithError(err).WithField("pool", pool.Name).Error("can't record apr snapshot")
		}
	}
	return nil
}

func (r *APRRecorder) recordPool(ctx context.Context, pool *config.PoolConfig, snapshotAt time.Time) error {
	exists, err := r.repo.HistoricalAPRs.Exists(ctx, pool.Addr(), snapshotAt)
	if err != nil {
		return fmt.Errorf("can't check for existing snapshot: %w", err)
	}
	if exists {
		r.logger.WithField("pool", pool.Name).Debug("apr snapshot for this hour already taken")
		return nil
	}

	pair := r.registry.Pair(pool.Addr())
	reserves, err := pair.GetReserves(ctx)
	if err != nil {
		return err
	}
	token0, err := pair.Token0(ctx)
	if err != nil {
		return err
	}
	token1, err := pair.Token1(ctx)
	if err != nil {
		return err
	}

	tvl := PoolTVLUSD(reserves, token0, token1, r.stables)
	feeAPR := FeeAPR(r.dailyVolumeUSD(pool.Name), pool.FeeRate.Decimal, tvl)
	emission := r.oracle.Emission
	emissionAPR := EmissionAPR(
		emission.WeeklyEmission.Decimal,
		r.gaugeShare(pool.Name),
		emission.RewardTokenPriceUSD.Decimal,
		tvl,
	)
	return r.repo.HistoricalAPRs.Insert(ctx, &entity.HistoricalAPR{
		PoolAddress: pool.Addr(),
		FeeAPR:      feeAPR,
		EmissionAPR: emissionAPR,
		TotalAPR:    feeAPR.Add(emissionAPR),
		TVLUSD:      tvl,
		SnapshotAt:  snapshotAt,
	})
}

func (r *APRRecorder) dailyVolumeUSD(pool string) decimal.Decimal {
	return r.oracle.DailyVolumeUSD[pool].Decimal
}

func (r *APRRecorder) gaugeShare(pool string) decimal.Decimal {
	return r.oracle.Emission.GaugeShares[pool].Decimal
}

// PoolTVLUSD values the pool reserves with the stablecoin heuristic: both
// sides stable - their sum, one side stable - twice that side, neither - zero.
func PoolTVLUSD(reserves *contract.Reserves, token0, token1 common.Address, stables map[common.Address]bool) decimal.Decimal {
	reserve0 := units.FromWei(reserves.Reserve0)
	reserve1 := units.FromWei(reserves.Reserve1)
	tvl := decimal.Zero
	switch {
	case stables[token0] && stables[token1]:
		tvl = reserve0.Add(reserve1)
	case stables[token0]:
		tvl = reserve0.Mul(decimal.NewFromInt(2))
	case stables[token1]:
		tvl = reserve1.Mul(decimal.NewFromInt(2))
	}
	return units.RoundUSD(tvl)
}

// FeeAPR annualizes trading fees: dailyVolume * feeRate * 365 / tvl, as a
// percentage. Zero TVL yields zero instead of dividing by zero.
func FeeAPR(dailyVolumeUSD, feeRate, tvlUSD decimal.Decimal) decimal.Decimal {
	if tvlUSD.IsZero() {
		return decimal.Zero
	}
	apr := dailyVolumeUSD.Mul(feeRate).Mul(daysPerYear).DivRound(tvlUSD, 18).Mul(oneHundred)
	return units.RoundAmount(apr)
}

// EmissionAPR annualizes gauge emissions: weeklyEmission * gaugeShare *
// rewardTokenPrice * 52 / tvl, as a percentage.
func EmissionAPR(weeklyEmission, gaugeShare, rewardTokenPriceUSD, tvlUSD decimal.Decimal) decimal.Decimal {
	if tvlUSD.IsZero() {
		return decimal.Zero
	}
	apr := weeklyEmission.Mul(gaugeShare).Mul(rewardTokenPriceUSD).Mul(weeksPerYear).DivRound(tvlUSD, 18).Mul(oneHundred)
	return units.RoundAmount(apr)
}
