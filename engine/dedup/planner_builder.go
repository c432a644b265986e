package dedup

import (
	"github.com/Carmen-Shannon/oxy-cachekey/engine/cachekey"

	"go.uber.org/zap"
)

// PlannerBuilderOption is a functional option for configuring a Planner.
// Use the With* functions to create options.
type PlannerBuilderOption func(p *planner)

// WithKeyDeriver sets the deriver used for every key. Defaults to cachekey.NewKeyDeriver().
//
// Parameters:
//   - d: the key deriver
//
// Returns:
//   - PlannerBuilderOption: option function to apply
func WithKeyDeriver(d cachekey.KeyDeriver) PlannerBuilderOption {
	return func(p *planner) {
		if d != nil {
			p.deriver = d
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - PlannerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) PlannerBuilderOption {
	return func(p *planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWorkers sets the number of documents planned concurrently.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - PlannerBuilderOption: option function to apply
func WithWorkers(n int) PlannerBuilderOption {
	return func(p *planner) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}
