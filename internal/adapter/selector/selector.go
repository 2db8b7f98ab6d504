package selector

import (
	"context"
	"sort"

	"github.com/soria/relaypool/internal/core/domain"
)

// Selector ranks the active-endpoint snapshot for one selection request.
// It never mutates state and never touches the network; freshness of the
// snapshot is the monitor's problem, availability of selection is ours.
type Selector struct{}

func New() *Selector {
	return &Selector{}
}

// Name returns the name of the selection strategy
func (s *Selector) Name() string {
	return "priority-smoothed"
}

// Select filters the snapshot by the caller's constraints and returns the
// best candidate. Ordering: administrative priority always dominates, then
// the Laplace-smoothed success rate, then last observed latency.
func (s *Selector) Select(ctx context.Context, endpoints []*domain.Endpoint, constraints domain.Constraints) (*domain.Endpoint, error) {
	eligible := make([]*domain.Endpoint, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if !endpoint.Active {
			continue
		}
		if constraints.Matches(endpoint) {
			eligible = append(eligible, endpoint)
		}
	}

	if len(eligible) == 0 {
		return nil, domain.ErrNoEligibleEndpoint
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		scoreA, scoreB := a.SmoothedSuccessRate(), b.SmoothedSuccessRate()
		if scoreA != scoreB {
			return scoreA > scoreB
		}
		return a.LastLatency < b.LastLatency
	})

	return eligible[0], nil
}
