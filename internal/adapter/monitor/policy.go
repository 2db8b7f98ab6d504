package monitor

import (
	"fmt"

	"github.com/soria/relaypool/internal/core/domain"
)

// Policy retires chronically failing endpoints. An endpoint is only
// judged once it has more than MinSamples outcomes; early noise never
// deactivates anything.
type Policy struct {
	MinSamples     int64
	MinSuccessRate float64
}

// ShouldDeactivate is evaluated strictly after an endpoint's counters
// were updated.
func (p Policy) ShouldDeactivate(endpoint *domain.Endpoint) bool {
	if endpoint.TotalAttempts() <= p.MinSamples {
		return false
	}
	return endpoint.SuccessRate() < p.MinSuccessRate
}

// Reason renders the status message recorded on deactivation.
func (p Policy) Reason(endpoint *domain.Endpoint) string {
	return fmt.Sprintf("deactivated: success rate %.1f%% below %.1f%% after %d attempts",
		endpoint.SuccessRate()*100, p.MinSuccessRate*100, endpoint.TotalAttempts())
}
