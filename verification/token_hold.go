package verification

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/contract/defiabi"
	"github.com/pelagos-finance/defi-indexer/ethclient"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/units"
)

type tokenHoldEvidence struct {
	Token     string          `json:"token"`
	Balance   decimal.Decimal `json:"balance"`
	FirstSeen *time.Time      `json:"first_seen,omitempty"`
	HeldDays  int             `json:"held_days"`
	MinAmount decimal.Decimal `json:"min_amount"`
	MinDays   int             `json:"min_days"`
}

// TokenHoldVerifier checks that the user currently holds at least MinAmount
// of a token and has held some of it for at least MinDays. The hold start is
// the user's earliest inbound transfer, looked up once per (token, user) and
// memoized in the cache.
type TokenHoldVerifier struct {
	logger   logging.Logger
	client   ethclient.Client
	registry *contract.Registry
	cache    ResultCache
	now      func() time.Time
}

func NewTokenHoldVerifier(logger logging.Logger, client ethclient.Client, registry *contract.Registry, cache ResultCache) *TokenHoldVerifier {
	return &TokenHoldVerifier{
		logger:   logger,
		client:   client,
		registry: registry,
		cache:    cache,
		now:      time.Now,
	}
}

func (v *TokenHoldVerifier) Type() TaskType {
	return TaskTokenHoldDuration
}

func (v *TokenHoldVerifier) Verify(ctx context.Context, user common.Address, task *Task) (bool, interface{}, error) {
	token, err := parseAddress(task.Token, "token")
	if err != nil {
		return invalidTask(err)
	}
	balance, err := v.registry.ERC20(token).BalanceOf(ctx, user)
	if err != nil {
		return false, nil, err
	}
	amount := units.RoundAmount(units.FromWei(balance))
	evidence := &tokenHoldEvidence{
		Token:     token.Hex(),
		Balance:   amount,
		MinAmount: task.MinAmount,
		MinDays:   task.MinDays,
	}
	if amount.LessThan(task.MinAmount) {
		return false, evidence, nil
	}
	firstSeen, err := v.firstTransferTime(ctx, token, user)
	if err != nil {
		return false, nil, err
	}
	if firstSeen == nil {
		return false, evidence, nil
	}
	evidence.FirstSeen = firstSeen
	evidence.HeldDays = daysBetween(*firstSeen, v.now())
	return evidence.HeldDays >= task.MinDays, evidence, nil
}

// firstTransferTime finds the block time of the user's earliest inbound token
// transfer, nil when there is none.
func (v *TokenHoldVerifier) firstTransferTime(ctx context.Context, token, user common.Address) (*time.Time, error) {
	key := fmt.Sprintf("first_transfer:%s:%s", token.Hex(), user.Hex())
	if blob, err := v.cache.Get(ctx, key); err != nil {
		v.logger.WithError(err).Warn("can't read first transfer cache")
	} else if blob != nil {
		ts, err := strconv.ParseInt(string(blob), 10, 64)
		if err == nil {
			t := time.Unix(ts, 0).UTC()
			return &t, nil
		}
	}

	logs, err := v.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{token},
		Topics: [][]common.Hash{
			{defiabi.ERC20TransferEventSignature},
			nil,
			{user.Hash()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("can't fetch transfer logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, nil
	}
	header, err := v.client.HeaderByNumber(ctx, uint(logs[0].BlockNumber))
	if err != nil {
		return nil, fmt.Errorf("can't get block header: %w", err)
	}
	firstSeen := time.Unix(int64(header.Time), 0).UTC()
	if err = v.cache.Set(ctx, key, []byte(strconv.FormatInt(firstSeen.Unix(), 10)), 0); err != nil {
		v.logger.WithError(err).Warn("can't cache first transfer time")
	}
	return &firstSeen, nil
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}
