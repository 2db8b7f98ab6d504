package probe

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/soria/relaypool/internal/core/domain"
)

// classifyError maps a transport-level failure onto a probe reason code.
// Timeouts are checked before connection errors: a net.Error that timed
// out stays a timeout even when it wraps a refused connection.
func classifyError(err error) domain.ReasonCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ReasonTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.ReasonConnectionRefused
	}

	return domain.ReasonOther
}

func reasonMessage(reason domain.ReasonCode, err error) string {
	switch reason {
	case domain.ReasonTimeout:
		return "timeout"
	case domain.ReasonConnectionRefused:
		return "connection refused"
	default:
		return err.Error()
	}
}
