package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/units"
)

// HealthMonitor periodically sweeps all vault borrowers, records their
// aggregate health factor and raises edge-triggered warnings: one warning
// when health drops below the threshold, re-armed only after it recovers.
type HealthMonitor struct {
	logger   logging.Logger
	repo     *repository.Repo
	risk     *config.RiskConfig
	notifier Notifier
	now      func() time.Time

	mu     sync.Mutex
	warned map[common.Address]bool
}

func NewHealthMonitor(logger logging.Logger, repo *repository.Repo, risk *config.RiskConfig, notifier Notifier) *HealthMonitor {
	return &HealthMonitor{
		logger:   logger,
		repo:     repo,
		risk:     risk,
		notifier: notifier,
		now:      time.Now,
		warned:   make(map[common.Address]bool),
	}
}

func (m *HealthMonitor) Sweep(ctx context.Context) error {
	users, err := m.repo.CollateralPositions.FindUsers(ctx)
	if err != nil {
		return fmt.Errorf("can't list vault users: %w", err)
	}
	for _, user := range users {
		if err := m.sweepUser(ctx, user); err != nil {
			m.logger.WithError(err).WithField("user", user).Error("can't sweep user health")
		}
	}
	return nil
}

func (m *HealthMonitor) sweepUser(ctx context.Context, user common.Address) error {
	positions, err := m.repo.CollateralPositions.FindByUser(ctx, user)
	if err != nil {
		return fmt.Errorf("can't get collateral positions: %w", err)
	}
	if len(positions) == 0 {
		m.clearWarned(user)
		return nil
	}
	hf := AggregateHealthFactor(positions)
	if err := m.repo.HealthSnapshots.Insert(ctx, &entity.HealthSnapshot{
		UserAddress:  user,
		HealthFactor: hf,
		SnapshotAt:   m.now().UTC(),
	}); err != nil {
		return fmt.Errorf("can't insert health snapshot: %w", err)
	}
	return m.evaluate(ctx, user, hf)
}

func (m *HealthMonitor) evaluate(ctx context.Context, user common.Address, hf decimal.Decimal) error {
	if !hf.LessThan(m.risk.WarningThreshold.Decimal) {
		m.clearWarned(user)
		return nil
	}
	m.mu.Lock()
	alreadyWarned := m.warned[user]
	m.warned[user] = true
	m.mu.Unlock()
	if alreadyWarned {
		return nil
	}
	severity := SeverityWarning
	if hf.LessThan(m.risk.LiquidationThreshold.Decimal) {
		severity = SeverityCritical
	}
	return m.notifier.Notify(ctx, &HealthWarning{
		UserAddress:  user,
		HealthFactor: hf,
		Severity:     severity,
		At:           m.now().UTC(),
	})
}

func (m *HealthMonitor) clearWarned(user common.Address) {
	m.mu.Lock()
	delete(m.warned, user)
	m.mu.Unlock()
}

// AggregateHealthFactor folds per-asset rows into the user-level health
// factor. Each row's factor already divides by the user's full debt, so the
// user-level value is simply their sum. Zero debt saturates.
func AggregateHealthFactor(positions []*entity.CollateralPosition) decimal.Decimal {
	if positions[0].DebtUSD.IsZero() {
		return units.HealthFactorInfinite
	}
	total := decimal.Zero
	for _, pos := range positions {
		total = total.Add(pos.HealthFactor)
	}
	return total
}
