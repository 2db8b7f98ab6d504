package domain

import (
	"context"
	"time"
)

const (
	KindStringHTTPProxy  = "http-proxy"
	KindStringSocksProxy = "socks-proxy"
	KindStringStreamURL  = "stream-url"
)

// EndpointKind distinguishes how an endpoint is used and probed
type EndpointKind string

const (
	KindHTTPProxy  EndpointKind = KindStringHTTPProxy
	KindSocksProxy EndpointKind = KindStringSocksProxy
	KindStreamURL  EndpointKind = KindStringStreamURL
)

func (k EndpointKind) IsValid() bool {
	switch k {
	case KindHTTPProxy, KindSocksProxy, KindStreamURL:
		return true
	default:
		return false
	}
}

func (k EndpointKind) String() string {
	return string(k)
}

// Endpoint is one upstream relay candidate: a forward proxy or a backup
// stream URL. Identity and address are immutable after creation; the
// statistics fields are mutated only through EndpointStore.ApplyOutcome.
type Endpoint struct {
	ID            string        `json:"id"`
	Address       string        `json:"address"`
	Kind          EndpointKind  `json:"kind"`
	Group         string        `json:"group,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Priority      int           `json:"priority"`
	Active        bool          `json:"active"`
	SuccessCount  int64         `json:"success_count"`
	FailureCount  int64         `json:"failure_count"`
	LastChecked   time.Time     `json:"last_checked"`
	LastLatency   time.Duration `json:"last_latency"`
	StatusMessage string        `json:"status_message"`
	CreatedAt     time.Time     `json:"created_at"`
}

// HasAuth reports whether the endpoint carries credentials. Free-tier
// callers must never be handed an authenticated endpoint.
func (e *Endpoint) HasAuth() bool {
	return e.Username != "" && e.Password != ""
}

// TotalAttempts is the number of outcomes ever applied to this endpoint.
func (e *Endpoint) TotalAttempts() int64 {
	return e.SuccessCount + e.FailureCount
}

// SuccessRate returns the observed success ratio in [0,1], or 0 when the
// endpoint has never been tested. Used by the deactivation policy only;
// ranking uses SmoothedSuccessRate.
func (e *Endpoint) SuccessRate() float64 {
	total := e.TotalAttempts()
	if total == 0 {
		return 0
	}
	return float64(e.SuccessCount) / float64(total)
}

// SmoothedSuccessRate is the ranking score: success/(success+failure+1).
// The +1 keeps a single lucky success from outranking a long proven track
// record and places never-tested endpoints at a neutral midpoint instead
// of scoring them as perfect or worthless.
func (e *Endpoint) SmoothedSuccessRate() float64 {
	return float64(e.SuccessCount) / float64(e.TotalAttempts()+1)
}

// Constraints narrow the eligible set for one selection request.
// Zero values mean "no constraint".
type Constraints struct {
	Kind                 EndpointKind
	Group                string
	ExcludeAuthenticated bool
}

// Matches reports whether the endpoint satisfies every set constraint.
func (c Constraints) Matches(e *Endpoint) bool {
	if c.Kind != "" && e.Kind != c.Kind {
		return false
	}
	if c.Group != "" && e.Group != c.Group {
		return false
	}
	if c.ExcludeAuthenticated && e.HasAuth() {
		return false
	}
	return true
}

// EndpointStore is the durable record of endpoint identity and running
// statistics. Implementations must serialise writes per endpoint so that
// concurrent ApplyOutcome calls never lose an increment; cross-endpoint
// consistency is not required and ListActive may be slightly stale.
type EndpointStore interface {
	ListActive(ctx context.Context) ([]*Endpoint, error)
	ListAll(ctx context.Context) ([]*Endpoint, error)
	Get(ctx context.Context, id string) (*Endpoint, error)
	Upsert(ctx context.Context, endpoint *Endpoint) error
	ApplyOutcome(ctx context.Context, id string, outcome Outcome) (*Endpoint, error)
	Deactivate(ctx context.Context, id string, reason string) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
