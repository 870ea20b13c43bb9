package verification

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Verifier checks one task type against live chain and indexed state. The
// returned evidence is serialized into the outcome as-is.
type Verifier interface {
	Type() TaskType
	Verify(ctx context.Context, user common.Address, task *Task) (bool, interface{}, error)
}

type Registry struct {
	verifiers map[TaskType]Verifier
}

func NewVerifierRegistry(verifiers ...Verifier) *Registry {
	m := make(map[TaskType]Verifier, len(verifiers))
	for _, v := range verifiers {
		m[v.Type()] = v
	}
	return &Registry{verifiers: m}
}

func (r *Registry) Get(taskType TaskType) (Verifier, error) {
	v, ok := r.verifiers[taskType]
	if !ok {
		return nil, fmt.Errorf("unsupported task type %q", taskType)
	}
	return v, nil
}
