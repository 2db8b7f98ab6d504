package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEligibleEndpoint is returned by selection when the filtered,
	// ordered candidate set is empty. Fallback policy belongs to the
	// request-handling layer, not the engine.
	ErrNoEligibleEndpoint = errors.New("no eligible endpoint")

	// ErrMonitorRunning is returned when Start is called on a monitor
	// that is already running.
	ErrMonitorRunning = errors.New("health monitor already running")
)

type ErrEndpointNotFound struct {
	ID string
}

func (e *ErrEndpointNotFound) Error() string {
	return fmt.Sprintf("endpoint not found: %s", e.ID)
}

// StoreError wraps a failed store operation; the monitor treats these as
// transient and backs off rather than crashing.
type StoreError struct {
	Err       error
	Operation string
	ID        string
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("store %s failed for endpoint %s: %v", e.Operation, e.ID, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
