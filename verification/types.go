package verification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type TaskType string

const (
	TaskTokenHoldDuration TaskType = "token_hold_duration"
	TaskLiquidityDuration TaskType = "liquidity_duration"
	TaskUSDPMinted        TaskType = "usdp_minted"
	TaskStabilityPool     TaskType = "stability_pool"
	TaskHealthMaintenance TaskType = "health_maintenance"
)

// Task describes one verifiable on-chain activity requirement. Which fields
// are meaningful depends on the task type; verifiers validate their own
// required parameters.
type Task struct {
	ID              string          `json:"id"`
	Type            TaskType        `json:"type"`
	Token           string          `json:"token,omitempty"`
	Pool            string          `json:"pool,omitempty"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MinDays         int             `json:"min_days"`
	MinHealthFactor decimal.Decimal `json:"min_health_factor"`
}

// Outcome is the result of one verification check. Both verified and
// unverified outcomes are cached, so repeated checks within the TTL return
// the exact same value.
type Outcome struct {
	TaskID    string          `json:"task_id"`
	TaskType  TaskType        `json:"task_type"`
	User      common.Address  `json:"user"`
	Verified  bool            `json:"verified"`
	Evidence  json.RawMessage `json:"evidence"`
	CheckedAt time.Time       `json:"checked_at"`
}

// errorEvidence records why a check could not be performed. Malformed task
// parameters fail closed: the outcome is unverified, not an error.
type errorEvidence struct {
	Error string `json:"error"`
}

func invalidTask(err error) (bool, interface{}, error) {
	return false, &errorEvidence{Error: err.Error()}, nil
}

func parseAddress(raw, field string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", field, raw)
	}
	return common.HexToAddress(raw), nil
}
