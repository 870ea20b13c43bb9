package verification_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/verification"
)

var testToken = common.HexToAddress("0xabc0000000000000000000000000000000000002")

// fakeChainClient serves a canned token balance and transfer history.
type fakeChainClient struct {
	balance       *big.Int
	transferBlock uint64
	transferTime  time.Time
}

func (c *fakeChainClient) BlockNumber(ctx context.Context) (uint, error) {
	return uint(c.transferBlock) + 1000, nil
}

func (c *fakeChainClient) HeaderByNumber(ctx context.Context, n uint) (*types.Header, error) {
	return &types.Header{Time: uint64(c.transferTime.Unix())}, nil
}

func (c *fakeChainClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	if c.transferBlock == 0 {
		return nil, nil
	}
	return []types.Log{{Address: testToken, BlockNumber: c.transferBlock}}, nil
}

func (c *fakeChainClient) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return common.LeftPadBytes(c.balance.Bytes(), 32), nil
}

func newHoldVerifier(client *fakeChainClient) *verification.TokenHoldVerifier {
	registry := contract.NewRegistry(client, &config.Config{})
	return verification.NewTokenHoldVerifier(logging.New(), client, registry, newFakeCache())
}

func holdTask(minAmount string, minDays int) *verification.Task {
	return &verification.Task{
		ID:        "hold-pela",
		Type:      verification.TaskTokenHoldDuration,
		Token:     testToken.Hex(),
		MinAmount: decimal.RequireFromString(minAmount),
		MinDays:   minDays,
	}
}

func wei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func TestTokenHoldVerifier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("held long enough", func(t *testing.T) {
		t.Parallel()

		v := newHoldVerifier(&fakeChainClient{
			balance:       wei(500),
			transferBlock: 100,
			transferTime:  time.Now().Add(-35 * 24 * time.Hour),
		})
		verified, _, err := v.Verify(ctx, testUser, holdTask("100", 30))
		require.NoError(t, err)
		require.True(t, verified)
	})

	t.Run("held too short", func(t *testing.T) {
		t.Parallel()

		v := newHoldVerifier(&fakeChainClient{
			balance:       wei(500),
			transferBlock: 100,
			transferTime:  time.Now().Add(-10 * 24 * time.Hour),
		})
		verified, _, err := v.Verify(ctx, testUser, holdTask("100", 30))
		require.NoError(t, err)
		require.False(t, verified)
	})

	t.Run("balance below minimum", func(t *testing.T) {
		t.Parallel()

		v := newHoldVerifier(&fakeChainClient{
			balance:       wei(50),
			transferBlock: 100,
			transferTime:  time.Now().Add(-35 * 24 * time.Hour),
		})
		verified, _, err := v.Verify(ctx, testUser, holdTask("100", 30))
		require.NoError(t, err)
		require.False(t, verified)
	})

	t.Run("no inbound transfers", func(t *testing.T) {
		t.Parallel()

		v := newHoldVerifier(&fakeChainClient{balance: wei(500)})
		verified, _, err := v.Verify(ctx, testUser, holdTask("100", 30))
		require.NoError(t, err)
		require.False(t, verified)
	})

	t.Run("invalid token address fails closed", func(t *testing.T) {
		t.Parallel()

		v := newHoldVerifier(&fakeChainClient{balance: wei(500)})
		task := holdTask("100", 30)
		task.Token = "not-an-address"
		verified, evidence, err := v.Verify(ctx, testUser, task)
		require.NoError(t, err)
		require.False(t, verified)
		require.NotNil(t, evidence)
	})
}
