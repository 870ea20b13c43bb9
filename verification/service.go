package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
)

// ResultCache is the slice of the redis cache the service needs.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service runs task verifications behind a short-TTL result cache. A fresh
// verified outcome is also written to the durable task_verifications table
// for the points system; cache and snapshot failures degrade, they never
// fail the check itself.
type Service struct {
	logger   logging.Logger
	repo     *repository.Repo
	cache    ResultCache
	registry *Registry
	ttl      time.Duration
	now      func() time.Time
}

func NewService(logger logging.Logger, repo *repository.Repo, cache ResultCache, registry *Registry, cfg *config.VerificationConfig) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		cache:    cache,
		registry: registry,
		ttl:      cfg.CacheTTL.Duration,
		now:      time.Now,
	}
}

func (s *Service) VerifyTask(ctx context.Context, user common.Address, task *Task) (*Outcome, error) {
	key := cacheKey(user, task.ID)
	if outcome := s.cachedOutcome(ctx, key); outcome != nil {
		return outcome, nil
	}

	var verified bool
	var evidence interface{}
	verifier, err := s.registry.Get(task.Type)
	if err != nil {
		// unknown task types fail closed with the reason in the evidence
		verified, evidence = false, &errorEvidence{Error: err.Error()}
	} else if verified, evidence, err = verifier.Verify(ctx, user, task); err != nil {
		return nil, fmt.Errorf("can't verify task %s: %w", task.ID, err)
	}
	evidenceJSON, err := json.Marshal(evidence)
	if err != nil {
		return nil, fmt.Errorf("can't marshal task evidence: %w", err)
	}
	outcome := &Outcome{
		TaskID:    task.ID,
		TaskType:  task.Type,
		User:      user,
		Verified:  verified,
		Evidence:  evidenceJSON,
		CheckedAt: s.now().UTC(),
	}
	if verified {
		s.saveSnapshot(ctx, outcome)
	}
	s.cacheOutcome(ctx, key, outcome)
	return outcome, nil
}

func (s *Service) cachedOutcome(ctx context.Context, key string) *Outcome {
	blob, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("can't read verification cache")
		return nil
	}
	if blob == nil {
		return nil
	}
	outcome := new(Outcome)
	if err = json.Unmarshal(blob, outcome); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("corrupted verification cache entry")
		return nil
	}
	return outcome
}

func (s *Service) cacheOutcome(ctx context.Context, key string, outcome *Outcome) {
	blob, err := json.Marshal(outcome)
	if err != nil {
		s.logger.WithError(err).Error("can't marshal verification outcome")
		return
	}
	if err = s.cache.Set(ctx, key, blob, s.ttl); err != nil {
		s.logger.WithError(err).Warn("can't cache verification outcome")
	}
}

func (s *Service) saveSnapshot(ctx context.Context, outcome *Outcome) {
	err := s.repo.TaskVerifications.Upsert(ctx, &entity.TaskVerification{
		UserAddress: outcome.User,
		TaskID:      outcome.TaskID,
		TaskType:    string(outcome.TaskType),
		Verified:    outcome.Verified,
		Evidence:    outcome.Evidence,
		CompletedAt: outcome.CheckedAt,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user": outcome.User,
			"task": outcome.TaskID,
		}).Error("can't save verification snapshot")
	}
}

func cacheKey(user common.Address, taskID string) string {
	return fmt.Sprintf("verification:%s:%s", taskID, strings.ToLower(user.Hex()))
}
