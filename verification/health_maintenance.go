package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/repository"
)

type healthMaintenanceEvidence struct {
	RequiredDays     int             `json:"required_days"`
	CoveredDays      int             `json:"covered_days"`
	MinHealthFactor  decimal.Decimal `json:"min_health_factor"`
	LowestFactorSeen decimal.Decimal `json:"lowest_factor_seen"`
}

// HealthMaintenanceVerifier checks that the user's vault health factor stayed
// at or above MinHealthFactor for the last MinDays full UTC days. A day
// counts only when at least one sweep snapshot exists for it, so gaps in
// coverage fail the task rather than pass it silently.
type HealthMaintenanceVerifier struct {
	repo *repository.Repo
	now  func() time.Time
}

func NewHealthMaintenanceVerifier(repo *repository.Repo) *HealthMaintenanceVerifier {
	return &HealthMaintenanceVerifier{repo: repo, now: time.Now}
}

func (v *HealthMaintenanceVerifier) Type() TaskType {
	return TaskHealthMaintenance
}

func (v *HealthMaintenanceVerifier) Verify(ctx context.Context, user common.Address, task *Task) (bool, interface{}, error) {
	if task.MinDays < 1 {
		return invalidTask(fmt.Errorf("min_days must be at least 1, got %d", task.MinDays))
	}
	windowStart := v.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -task.MinDays)
	snapshots, err := v.repo.HealthSnapshots.FindByUserSince(ctx, user, windowStart)
	if err != nil {
		return false, nil, err
	}
	verified, coveredDays, lowestSeen := EvaluateHealthWindow(snapshots, task.MinHealthFactor, task.MinDays, windowStart)
	return verified, &healthMaintenanceEvidence{
		RequiredDays:     task.MinDays,
		CoveredDays:      coveredDays,
		MinHealthFactor:  task.MinHealthFactor,
		LowestFactorSeen: lowestSeen,
	}, nil
}

// EvaluateHealthWindow checks a trailing window of sweep snapshots: every one
// of the minDays full UTC days starting at windowStart must have at least one
// snapshot, and no snapshot in the window may fall below minHealthFactor.
// It returns the number of covered days and the lowest factor seen.
func EvaluateHealthWindow(snapshots []*entity.HealthSnapshot, minHealthFactor decimal.Decimal, minDays int, windowStart time.Time) (bool, int, decimal.Decimal) {
	coveredDays := make(map[string]bool, minDays)
	minSeen := decimal.Zero
	healthy := true
	for i, snapshot := range snapshots {
		coveredDays[snapshot.SnapshotAt.UTC().Format("2006-01-02")] = true
		if i == 0 || snapshot.HealthFactor.LessThan(minSeen) {
			minSeen = snapshot.HealthFactor
		}
		if snapshot.HealthFactor.LessThan(minHealthFactor) {
			healthy = false
		}
	}
	// the window end day may still be in progress, only full days count
	fullDays := 0
	for d := 0; d < minDays; d++ {
		day := windowStart.AddDate(0, 0, d).Format("2006-01-02")
		if coveredDays[day] {
			fullDays++
		}
	}
	return healthy && fullDays >= minDays, fullDays, minSeen
}
