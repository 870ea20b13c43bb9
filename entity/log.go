package entity

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Log is an in-memory carrier for a fetched event log. Raw logs are not
// persisted; handlers re-derive full entity state from contract reads instead.
type Log struct {
	ChainID         string
	Address         common.Address
	Topic0          *common.Hash
	Topic1          *common.Hash
	Topic2          *common.Hash
	Topic3          *common.Hash
	Data            []byte
	BlockNumber     uint
	LogIndex        uint
	TransactionHash common.Hash
}

func NewLog(chainID string, log types.Log) *Log {
	l := &Log{
		ChainID:         chainID,
		Address:         log.Address,
		Data:            log.Data,
		BlockNumber:     uint(log.BlockNumber),
		LogIndex:        uint(log.Index),
		TransactionHash: log.TxHash,
	}
	topics := []**common.Hash{&l.Topic0, &l.Topic1, &l.Topic2, &l.Topic3}
	for i := range log.Topics {
		*topics[i] = &log.Topics[i]
	}
	return l
}

func (l *Log) Topics() []common.Hash {
	topics := make([]common.Hash, 0, 4)
	for _, topic := range []*common.Hash{l.Topic0, l.Topic1, l.Topic2, l.Topic3} {
		if topic == nil {
			break
		}
		topics = append(topics, *topic)
	}
	return topics
}
