package hours

import (
	"context"

	"github.com/tahmid-rahman/openslot/internal/availability"
)

// Provider yields the business operating hours used by the availability scan.
// Hours are assumed static for the scope of a single request.
type Provider interface {
	BusinessHours(ctx context.Context) (availability.BusinessHours, error)
}

type staticProvider struct {
	hours availability.BusinessHours
}

// NewStaticProvider builds a provider from configuration values, validating
// them once up front. This is the fallback when no business service is
// reachable.
func NewStaticProvider(timezone, open, close string) (Provider, error) {
	h, err := availability.NewBusinessHours(timezone, open, close)
	if err != nil {
		return nil, err
	}
	return &staticProvider{hours: h}, nil
}

func (p *staticProvider) BusinessHours(_ context.Context) (availability.BusinessHours, error) {
	return p.hours, nil
}
