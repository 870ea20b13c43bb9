package contract

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/contract/defiabi"
	"github.com/pelagos-finance/defi-indexer/ethclient"
)

// Registry resolves logical contract names and token addresses to call-ready
// handles. Handles are instantiated lazily and cached for reuse across
// handlers, analytics jobs and verifiers.
type Registry struct {
	client    ethclient.Client
	contracts map[string]*config.ContractConfig

	mu      sync.Mutex
	handles map[common.Address]*Contract
}

func NewRegistry(client ethclient.Client, cfg *config.Config) *Registry {
	return &Registry{
		client:    client,
		contracts: cfg.Contracts,
		handles:   make(map[common.Address]*Contract),
	}
}

func (r *Registry) handle(addr common.Address, newContract func() *Contract) *Contract {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.handles[addr]; ok {
		return c
	}
	c := newContract()
	r.handles[addr] = c
	return c
}

func (r *Registry) namedAddress(name string) (common.Address, error) {
	c, ok := r.contracts[name]
	if !ok {
		return common.Address{}, fmt.Errorf("no contract configured under name %s", name)
	}
	return c.Addr(), nil
}

func (r *Registry) Pair(addr common.Address) *PairContract {
	return &PairContract{r.handle(addr, func() *Contract {
		return NewContract(r.client, addr, defiabi.PairABI)
	})}
}

func (r *Registry) ERC20(addr common.Address) *ERC20Contract {
	return &ERC20Contract{r.handle(addr, func() *Contract {
		return NewContract(r.client, addr, defiabi.ERC20ABI)
	})}
}

func (r *Registry) Vault() (*VaultContract, error) {
	addr, err := r.namedAddress(config.ContractUSDPVault)
	if err != nil {
		return nil, err
	}
	return &VaultContract{r.handle(addr, func() *Contract {
		return NewContract(r.client, addr, defiabi.VaultABI)
	})}, nil
}

func (r *Registry) VotingEscrow() (*VotingEscrowContract, error) {
	addr, err := r.namedAddress(config.ContractVotingEscrow)
	if err != nil {
		return nil, err
	}
	return &VotingEscrowContract{r.handle(addr, func() *Contract {
		return NewContract(r.client, addr, defiabi.VotingEscrowABI)
	})}, nil
}

func (r *Registry) Rewards() (*RewardsContract, error) {
	addr, err := r.namedAddress(config.ContractRewards)
	if err != nil {
		return nil, err
	}
	return &RewardsContract{r.handle(addr, func() *Contract {
		return NewContract(r.client, addr, defiabi.RewardsABI)
	})}, nil
}
