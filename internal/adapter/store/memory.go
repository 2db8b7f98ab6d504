package store

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/soria/relaypool/internal/core/domain"
)

// Memory is an in-process EndpointStore. Records live in a concurrent map
// keyed by endpoint ID; every mutation goes through Compute so that a
// read-modify-write on one record is atomic and concurrent outcome
// applications never lose an increment. Readers always get copies, so a
// snapshot handed to the selector can be slightly stale but never torn.
type Memory struct {
	records *xsync.Map[string, *domain.Endpoint]
	clock   domain.Clock
}

func NewMemory(clock domain.Clock) *Memory {
	return &Memory{
		records: xsync.NewMap[string, *domain.Endpoint](),
		clock:   clock,
	}
}

func (m *Memory) ListActive(ctx context.Context) ([]*domain.Endpoint, error) {
	return m.list(func(e *domain.Endpoint) bool { return e.Active })
}

func (m *Memory) ListAll(ctx context.Context) ([]*domain.Endpoint, error) {
	return m.list(func(e *domain.Endpoint) bool { return true })
}

func (m *Memory) list(keep func(*domain.Endpoint) bool) ([]*domain.Endpoint, error) {
	endpoints := make([]*domain.Endpoint, 0)
	m.records.Range(func(_ string, value *domain.Endpoint) bool {
		if keep(value) {
			endpointCopy := *value
			endpoints = append(endpoints, &endpointCopy)
		}
		return true
	})
	return endpoints, nil
}

func (m *Memory) Get(ctx context.Context, id string) (*domain.Endpoint, error) {
	value, ok := m.records.Load(id)
	if !ok {
		return nil, &domain.ErrEndpointNotFound{ID: id}
	}
	endpointCopy := *value
	return &endpointCopy, nil
}

// Upsert inserts the endpoint or, when the ID is already known, refreshes
// its administrative fields. Observed statistics and the active flag are
// owned by the engine and survive a re-seed.
func (m *Memory) Upsert(ctx context.Context, endpoint *domain.Endpoint) error {
	m.records.Compute(endpoint.ID, func(old *domain.Endpoint, loaded bool) (*domain.Endpoint, xsync.ComputeOp) {
		if !loaded {
			record := *endpoint
			if record.CreatedAt.IsZero() {
				record.CreatedAt = m.clock.Now()
			}
			if record.StatusMessage == "" {
				record.StatusMessage = "never tested"
			}
			return &record, xsync.UpdateOp
		}
		record := *old
		record.Address = endpoint.Address
		record.Kind = endpoint.Kind
		record.Group = endpoint.Group
		record.Username = endpoint.Username
		record.Password = endpoint.Password
		record.Priority = endpoint.Priority
		return &record, xsync.UpdateOp
	})
	return nil
}

// ApplyOutcome folds one probe or traffic outcome into the record and
// returns a copy of the updated state. Counters only ever increase;
// LastLatency tracks the most recent successful use.
func (m *Memory) ApplyOutcome(ctx context.Context, id string, outcome domain.Outcome) (*domain.Endpoint, error) {
	var updated *domain.Endpoint
	m.records.Compute(id, func(old *domain.Endpoint, loaded bool) (*domain.Endpoint, xsync.ComputeOp) {
		if !loaded {
			return nil, xsync.CancelOp
		}
		record := *old
		if outcome.Success {
			record.SuccessCount++
			record.LastLatency = outcome.Latency
		} else {
			record.FailureCount++
		}
		record.LastChecked = m.clock.Now()
		record.StatusMessage = outcome.Summary()
		updated = &record
		return &record, xsync.UpdateOp
	})
	if updated == nil {
		return nil, &domain.ErrEndpointNotFound{ID: id}
	}
	endpointCopy := *updated
	return &endpointCopy, nil
}

// Deactivate permanently excludes the endpoint from selection. The
// transition is one-way; reactivation is an administrative act elsewhere.
func (m *Memory) Deactivate(ctx context.Context, id string, reason string) error {
	found := false
	m.records.Compute(id, func(old *domain.Endpoint, loaded bool) (*domain.Endpoint, xsync.ComputeOp) {
		if !loaded {
			return nil, xsync.CancelOp
		}
		found = true
		if !old.Active {
			return old, xsync.CancelOp
		}
		record := *old
		record.Active = false
		record.StatusMessage = reason
		return &record, xsync.UpdateOp
	})
	if !found {
		return &domain.ErrEndpointNotFound{ID: id}
	}
	return nil
}

var _ domain.EndpointStore = (*Memory)(nil)
