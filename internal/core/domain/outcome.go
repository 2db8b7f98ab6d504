package domain

import (
	"context"
	"time"
)

const (
	ReasonStringOK                = "ok"
	ReasonStringTimeout           = "timeout"
	ReasonStringConnectionRefused = "connection-refused"
	ReasonStringBadStatus         = "bad-status"
	ReasonStringOther             = "other"
)

// ReasonCode classifies how a probe or a real-traffic use of an endpoint
// ended. Failures are routine signal for scoring, never system errors.
type ReasonCode string

const (
	ReasonOK                ReasonCode = ReasonStringOK
	ReasonTimeout           ReasonCode = ReasonStringTimeout
	ReasonConnectionRefused ReasonCode = ReasonStringConnectionRefused
	ReasonBadStatus         ReasonCode = ReasonStringBadStatus
	ReasonOther             ReasonCode = ReasonStringOther
)

func (r ReasonCode) String() string {
	return string(r)
}

// Outcome is one observation of an endpoint, from a periodic probe or
// from a request handler reporting how real traffic went.
type Outcome struct {
	Success bool
	Latency time.Duration
	Reason  ReasonCode
	Message string
}

// Summary renders the human-readable status line stored on the record.
func (o Outcome) Summary() string {
	if o.Success {
		return "OK"
	}
	if o.Message != "" {
		return o.Message
	}
	return o.Reason.String()
}

// Prober issues one bounded-time health check against an endpoint. All
// failure modes surface as an Outcome reason code; no error crosses the
// probe boundary and no shared state is touched.
type Prober interface {
	Probe(ctx context.Context, endpoint *Endpoint) Outcome
}
