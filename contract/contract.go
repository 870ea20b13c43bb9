package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/ethclient"
)

type Contract struct {
	address common.Address
	client  ethclient.Client
	abi     abi.ABI
}

func NewContract(client ethclient.Client, addr common.Address, abi abi.ABI) *Contract {
	return &Contract{addr, client, abi}
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) AllEvents() map[string]bool {
	events := make(map[string]bool, len(c.abi.Events))
	for _, event := range c.abi.Events {
		events[event.String()] = true
	}
	return events
}

// EventID resolves a full event signature (abi.Event.String() form) to its
// topic0 hash.
func (c *Contract) EventID(signature string) (common.Hash, bool) {
	for _, event := range c.abi.Events {
		if event.String() == signature {
			return event.ID, true
		}
	}
	return common.Hash{}, false
}

func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot encode abi calldata: %w", err)
	}
	res, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot call %s(...): %w", method, err)
	}
	return res, nil
}

// CallAndUnpack is Call plus decoding of the return values, for methods with
// multiple or dynamically-typed outputs.
func (c *Contract) CallAndUnpack(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	res, err := c.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	values, err := c.abi.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s(...) result: %w", method, err)
	}
	return values, nil
}

func (c *Contract) ParseLog(log *entity.Log) (string, map[string]interface{}, error) {
	return ParseLog(c.abi, log)
}
