package domain

import (
	"fmt"
	"sync"
)

// MaxFeeBPS caps the execution fee at 5%.
const MaxFeeBPS = 500

// ExecutionParams holds the runtime execution policy: pause flag,
// registered executor, slippage bound, and execution fee. It is an
// explicit object injected at construction rather than ambient global
// state, and is safe for concurrent use.
type ExecutionParams struct {
	mu            sync.RWMutex
	paused        bool
	executorID    string
	maxSlippageBP uint64
	feeBPS        uint64
}

// NewExecutionParams creates ExecutionParams with the given executor
// identity, maximum per-order slippage tolerance, and execution fee.
func NewExecutionParams(executorID string, maxSlippageBP, feeBPS uint64) (*ExecutionParams, error) {
	if executorID == "" {
		return nil, fmt.Errorf("executor id must be non-empty")
	}
	if maxSlippageBP > BPSDenominator {
		return nil, fmt.Errorf("max slippage %d bp exceeds %d bp", maxSlippageBP, BPSDenominator)
	}
	if feeBPS > MaxFeeBPS {
		return nil, ErrFeeTooHigh
	}
	return &ExecutionParams{
		executorID:    executorID,
		maxSlippageBP: maxSlippageBP,
		feeBPS:        feeBPS,
	}, nil
}

// Paused returns the pause flag.
func (p *ExecutionParams) Paused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused
}

// SetPaused toggles the emergency pause flag.
func (p *ExecutionParams) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
}

// ExecutorID returns the identity authorized to trigger executions.
func (p *ExecutionParams) ExecutorID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.executorID
}

// SetExecutorID replaces the registered executor identity.
func (p *ExecutionParams) SetExecutorID(id string) error {
	if id == "" {
		return &ValidationError{Message: "executor id must be non-empty"}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.executorID = id
	return nil
}

// MaxSlippageBP returns the maximum slippage tolerance accepted at
// order creation.
func (p *ExecutionParams) MaxSlippageBP() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxSlippageBP
}

// FeeBPS returns the execution fee in basis points.
func (p *ExecutionParams) FeeBPS() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feeBPS
}

// SetFeeBPS updates the execution fee. Fails with ErrFeeTooHigh above
// MaxFeeBPS.
func (p *ExecutionParams) SetFeeBPS(feeBPS uint64) error {
	if feeBPS > MaxFeeBPS {
		return ErrFeeTooHigh
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feeBPS = feeBPS
	return nil
}
