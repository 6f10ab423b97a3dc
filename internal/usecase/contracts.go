package usecase

import (
	"context"
	"fmt"
	"time"

	drepo "VixNav/internal/domain/repository"
	"VixNav/internal/domain/ticker"
)

// Contracts lists the charting codes the collector should fetch.
type Contracts struct {
	comps drepo.CompositionStore
}

func NewContracts(comps drepo.CompositionStore) *Contracts {
	return &Contracts{comps: comps}
}

// Targets returns the near and far codes of the composition in force at asOf,
// resolved against asOf and de-duplicated in order.
func (c *Contracts) Targets(ctx context.Context, asOf time.Time) ([]string, error) {
	comp, err := c.comps.Latest(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("composition: %w", err)
	}

	seen := make(map[string]bool, 2)
	out := make([]string, 0, 2)
	for _, raw := range []string{comp.NearFuture, comp.FarFuture} {
		norm, err := ticker.Normalize(raw)
		if err != nil {
			return nil, err
		}
		code, err := ticker.ResolveContractYear(norm, asOf)
		if err != nil {
			return nil, err
		}
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out, nil
}
