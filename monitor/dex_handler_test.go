package monitor_test

import (
	"context"
	"fmt"
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
	"github.com/pelagos-finance/defi-indexer/contract/defiabi"
	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/monitor"
	"github.com/pelagos-finance/defi-indexer/repository"
)

var (
	testUser  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testPool  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testUSDC  = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testUSDT  = common.HexToAddress("0x4444444444444444444444444444444444444444")
	testWETH  = common.HexToAddress("0x5555555555555555555555555555555555555555")
	testToken = common.HexToAddress("0x6666666666666666666666666666666666666666")
)

func wei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func requireDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestDeriveLiquidityPosition(t *testing.T) {
	t.Parallel()

	stables := map[common.Address]bool{testUSDC: true, testUSDT: true}

	t.Run("stable-stable pool", func(t *testing.T) {
		t.Parallel()

		pos := monitor.DeriveLiquidityPosition(
			testUser, testPool,
			wei(2000), wei(10000),
			&contract.Reserves{Reserve0: wei(800), Reserve1: wei(1200)},
			testUSDC, testUSDT,
			stables,
		)
		require.Equal(t, testUser, pos.UserAddress)
		require.Equal(t, testPool, pos.PoolAddress)
		requireDecimalEqual(t, "2000", pos.LPBalance)
		requireDecimalEqual(t, "20", pos.SharePercent)
		requireDecimalEqual(t, "160", pos.Token0Amount)
		requireDecimalEqual(t, "240", pos.Token1Amount)
		requireDecimalEqual(t, "400", pos.LiquidityUSD)
	})

	t.Run("stable-volatile pool doubles the stable side", func(t *testing.T) {
		t.Parallel()

		pos := monitor.DeriveLiquidityPosition(
			testUser, testPool,
			wei(1000), wei(10000),
			&contract.Reserves{Reserve0: wei(50), Reserve1: wei(150000)},
			testWETH, testUSDC,
			stables,
		)
		requireDecimalEqual(t, "10", pos.SharePercent)
		requireDecimalEqual(t, "5", pos.Token0Amount)
		requireDecimalEqual(t, "15000", pos.Token1Amount)
		requireDecimalEqual(t, "30000", pos.LiquidityUSD)
	})

	t.Run("volatile-volatile pool has no usd value", func(t *testing.T) {
		t.Parallel()

		pos := monitor.DeriveLiquidityPosition(
			testUser, testPool,
			wei(1000), wei(10000),
			&contract.Reserves{Reserve0: wei(50), Reserve1: wei(700)},
			testWETH, testToken,
			stables,
		)
		requireDecimalEqual(t, "0", pos.LiquidityUSD)
	})

	t.Run("zero total supply", func(t *testing.T) {
		t.Parallel()

		pos := monitor.DeriveLiquidityPosition(
			testUser, testPool,
			wei(1000), big.NewInt(0),
			&contract.Reserves{Reserve0: wei(800), Reserve1: wei(1200)},
			testUSDC, testUSDT,
			stables,
		)
		requireDecimalEqual(t, "0", pos.SharePercent)
		requireDecimalEqual(t, "0", pos.Token0Amount)
		requireDecimalEqual(t, "0", pos.Token1Amount)
		requireDecimalEqual(t, "0", pos.LiquidityUSD)
	})
}

// fakePairChain answers LP pair contract calls from fixed state.
type fakePairChain struct {
	balance     *big.Int
	totalSupply *big.Int
	reserve0    *big.Int
	reserve1    *big.Int
	token0      common.Address
	token1      common.Address
}

func (c *fakePairChain) BlockNumber(ctx context.Context) (uint, error) {
	return 0, nil
}

func (c *fakePairChain) HeaderByNumber(ctx context.Context, n uint) (*types.Header, error) {
	return &types.Header{}, nil
}

func (c *fakePairChain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (c *fakePairChain) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	method, err := defiabi.PairABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "balanceOf":
		return common.LeftPadBytes(c.balance.Bytes(), 32), nil
	case "totalSupply":
		return common.LeftPadBytes(c.totalSupply.Bytes(), 32), nil
	case "getReserves":
		return method.Outputs.Pack(c.reserve0, c.reserve1, uint32(0))
	case "token0":
		return common.LeftPadBytes(c.token0.Bytes(), 32), nil
	case "token1":
		return common.LeftPadBytes(c.token1.Bytes(), 32), nil
	}
	return nil, fmt.Errorf("unexpected %s call", method.Name)
}

type positionKey struct {
	user common.Address
	pool common.Address
}

type fakeLiquidityPositionsRepo struct {
	rows map[positionKey]*entity.LiquidityPosition
}

func (r *fakeLiquidityPositionsRepo) Upsert(ctx context.Context, pos *entity.LiquidityPosition) error {
	r.rows[positionKey{pos.UserAddress, pos.PoolAddress}] = pos
	return nil
}

func (r *fakeLiquidityPositionsRepo) Delete(ctx context.Context, user, pool common.Address) error {
	delete(r.rows, positionKey{user, pool})
	return nil
}

func (r *fakeLiquidityPositionsRepo) GetByUserAndPool(ctx context.Context, user, pool common.Address) (*entity.LiquidityPosition, error) {
	pos, ok := r.rows[positionKey{user, pool}]
	if !ok {
		return nil, db.ErrNotFound
	}
	return pos, nil
}

func (r *fakeLiquidityPositionsRepo) FindByUser(ctx context.Context, user common.Address) ([]*entity.LiquidityPosition, error) {
	res := make([]*entity.LiquidityPosition, 0, len(r.rows))
	for key, pos := range r.rows {
		if key.user == user {
			res = append(res, pos)
		}
	}
	return res, nil
}

type fakeHistoricalAPRsRepo struct{}

func (r *fakeHistoricalAPRsRepo) Insert(ctx context.Context, snapshot *entity.HistoricalAPR) error {
	return nil
}

func (r *fakeHistoricalAPRsRepo) Exists(ctx context.Context, pool common.Address, snapshotAt time.Time) (bool, error) {
	return false, nil
}

func (r *fakeHistoricalAPRsRepo) GetLatestByPool(ctx context.Context, pool common.Address) (*entity.HistoricalAPR, error) {
	return nil, db.ErrNotFound
}

func TestDexHandlerReplacesAndDeletesPositions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	chain := &fakePairChain{
		balance:     wei(2000),
		totalSupply: wei(10000),
		reserve0:    wei(800),
		reserve1:    wei(1200),
		token0:      testUSDC,
		token1:      testUSDT,
	}
	positions := &fakeLiquidityPositionsRepo{rows: make(map[positionKey]*entity.LiquidityPosition)}
	repo := &repository.Repo{LiquidityPositions: positions, HistoricalAPRs: &fakeHistoricalAPRsRepo{}}
	handler := monitor.NewDexHandler(
		logging.New(),
		repo,
		contract.NewRegistry(chain, &config.Config{}),
		map[common.Address]bool{testUSDC: true, testUSDT: true},
	)
	mintEvent := &entity.Log{Address: testPool}
	key := positionKey{testUser, testPool}

	require.NoError(t, handler.HandleMint(ctx, mintEvent, map[string]interface{}{"to": testUser}))
	require.Contains(t, positions.rows, key)
	requireDecimalEqual(t, "2000", positions.rows[key].LPBalance)
	requireDecimalEqual(t, "400", positions.rows[key].LiquidityUSD)

	// a later event replaces the row with the latest chain state wholesale
	chain.balance = wei(1000)
	chain.reserve0 = wei(1000)
	chain.reserve1 = wei(1000)
	require.NoError(t, handler.HandleMint(ctx, mintEvent, map[string]interface{}{"to": testUser}))
	requireDecimalEqual(t, "1000", positions.rows[key].LPBalance)
	requireDecimalEqual(t, "10", positions.rows[key].SharePercent)
	requireDecimalEqual(t, "200", positions.rows[key].LiquidityUSD)

	// a zero balance removes the row instead of storing zeroes
	chain.balance = big.NewInt(0)
	require.NoError(t, handler.HandleBurn(ctx, mintEvent, map[string]interface{}{"from": testUser}))
	require.NotContains(t, positions.rows, key)
}
