package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/verification"
)

var testUser = common.HexToAddress("0xabc0000000000000000000000000000000000001")

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.entries[key], nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

type fakeTaskVerificationsRepo struct {
	saved []*entity.TaskVerification
}

func (r *fakeTaskVerificationsRepo) Upsert(ctx context.Context, v *entity.TaskVerification) error {
	r.saved = append(r.saved, v)
	return nil
}

type countingVerifier struct {
	taskType verification.TaskType
	verified bool
	calls    int
}

func (v *countingVerifier) Type() verification.TaskType {
	return v.taskType
}

func (v *countingVerifier) Verify(ctx context.Context, user common.Address, task *verification.Task) (bool, interface{}, error) {
	v.calls++
	return v.verified, map[string]string{"checked": "yes"}, nil
}

func newTestService(verified bool) (*verification.Service, *countingVerifier, *fakeTaskVerificationsRepo) {
	verifier := &countingVerifier{taskType: verification.TaskUSDPMinted, verified: verified}
	repo := &fakeTaskVerificationsRepo{}
	svc := verification.NewService(
		logging.New(),
		&repository.Repo{TaskVerifications: repo},
		newFakeCache(),
		verification.NewVerifierRegistry(verifier),
		&config.VerificationConfig{CacheTTL: config.Duration{Duration: 10 * time.Minute}},
	)
	return svc, verifier, repo
}

func TestVerifyTaskCachesOutcome(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, verifier, repo := newTestService(true)
	task := &verification.Task{
		ID:        "mint-1000",
		Type:      verification.TaskUSDPMinted,
		MinAmount: decimal.RequireFromString("1000"),
	}

	first, err := svc.VerifyTask(ctx, testUser, task)
	require.NoError(t, err)
	require.True(t, first.Verified)
	require.Equal(t, 1, verifier.calls)
	require.Len(t, repo.saved, 1)

	// second check within the TTL is served from the cache
	second, err := svc.VerifyTask(ctx, testUser, task)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, verifier.calls)
	require.Len(t, repo.saved, 1)
}

func TestVerifyTaskCachesNegativeOutcome(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, verifier, repo := newTestService(false)
	task := &verification.Task{ID: "mint-1000", Type: verification.TaskUSDPMinted}

	outcome, err := svc.VerifyTask(ctx, testUser, task)
	require.NoError(t, err)
	require.False(t, outcome.Verified)
	// unverified outcomes are cached but never persisted
	require.Empty(t, repo.saved)

	_, err = svc.VerifyTask(ctx, testUser, task)
	require.NoError(t, err)
	require.Equal(t, 1, verifier.calls)
}

func TestVerifyTaskUnsupportedTypeFailsClosed(t *testing.T) {
	t.Parallel()

	svc, _, repo := newTestService(true)
	outcome, err := svc.VerifyTask(context.Background(), testUser, &verification.Task{
		ID:   "unknown",
		Type: verification.TaskType("no_such_task"),
	})
	require.NoError(t, err)
	require.False(t, outcome.Verified)
	require.Contains(t, string(outcome.Evidence), "no_such_task")
	require.Empty(t, repo.saved)
}
