package verification

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/contract/defiabi"
	"github.com/pelagos-finance/defi-indexer/ethclient"
	"github.com/pelagos-finance/defi-indexer/units"
)

type usdpMintedEvidence struct {
	TotalMinted decimal.Decimal `json:"total_minted"`
	BorrowCount int             `json:"borrow_count"`
	MinAmount   decimal.Decimal `json:"min_amount"`
}

// USDPMintedVerifier checks that the user has borrowed at least MinAmount
// USDP over the vault's lifetime, by summing their Borrow events. Repayments
// deliberately don't reduce the total: the task rewards cumulative minting.
type USDPMintedVerifier struct {
	client   ethclient.Client
	vaultCfg *config.ContractConfig
}

func NewUSDPMintedVerifier(client ethclient.Client, vaultCfg *config.ContractConfig) *USDPMintedVerifier {
	return &USDPMintedVerifier{client: client, vaultCfg: vaultCfg}
}

func (v *USDPMintedVerifier) Type() TaskType {
	return TaskUSDPMinted
}

func (v *USDPMintedVerifier) Verify(ctx context.Context, user common.Address, task *Task) (bool, interface{}, error) {
	borrowEvent, ok := defiabi.VaultABI.Events["Borrow"]
	if !ok {
		return false, nil, fmt.Errorf("vault abi has no Borrow event")
	}
	logs, err := v.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(int64(v.vaultCfg.StartBlock)),
		Addresses: []common.Address{v.vaultCfg.Addr()},
		Topics: [][]common.Hash{
			{borrowEvent.ID},
			{user.Hash()},
		},
	})
	if err != nil {
		return false, nil, fmt.Errorf("can't fetch borrow logs: %w", err)
	}
	total := new(big.Int)
	for _, log := range logs {
		total.Add(total, new(big.Int).SetBytes(log.Data))
	}
	evidence := &usdpMintedEvidence{
		TotalMinted: units.RoundAmount(units.FromWei(total)),
		BorrowCount: len(logs),
		MinAmount:   task.MinAmount,
	}
	return !evidence.TotalMinted.LessThan(task.MinAmount), evidence, nil
}
