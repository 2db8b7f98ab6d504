package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soria/relaypool/internal/adapter/monitor"
	"github.com/soria/relaypool/internal/adapter/probe"
	"github.com/soria/relaypool/internal/adapter/selector"
	"github.com/soria/relaypool/internal/adapter/store"
	"github.com/soria/relaypool/internal/config"
	"github.com/soria/relaypool/internal/core/domain"
)

// Engine is the façade request handlers talk to: it owns the health
// monitor's lifecycle, answers Select with the best eligible endpoint,
// and accepts real-traffic outcome reports that feed the same statistics
// the monitor maintains. Explicitly constructed with injected
// dependencies; there is no process-wide instance.
type Engine struct {
	store    domain.EndpointStore
	prober   domain.Prober
	selector *selector.Selector
	monitor  *monitor.Monitor
	clock    domain.Clock
	logger   *slog.Logger
}

// Options collects the injectable dependencies. Zero fields fall back
// to production defaults; a nil Store gets a fresh in-memory store.
type Options struct {
	Store  domain.EndpointStore
	Prober domain.Prober
	Clock  domain.Clock
}

func New(cfg *config.Config, opts Options, logger *slog.Logger) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}

	endpointStore := opts.Store
	if endpointStore == nil {
		endpointStore = store.NewMemory(clock)
	}

	prober := opts.Prober
	if prober == nil {
		prober = probe.NewExecutor(cfg.Monitor.ProbeTargetURL, cfg.Monitor.ProbeTimeout, clock)
	}

	policy := monitor.Policy{
		MinSamples:     cfg.Policy.MinSamples,
		MinSuccessRate: cfg.Policy.MinSuccessRate,
	}
	monitorConfig := monitor.Config{
		Interval:         cfg.Monitor.Interval,
		FallbackInterval: cfg.Monitor.FallbackInterval,
		CycleTimeout:     cfg.Monitor.CycleTimeout,
		ProbeConcurrency: cfg.Monitor.ProbeConcurrency,
	}

	return &Engine{
		store:    endpointStore,
		prober:   prober,
		selector: selector.New(),
		monitor:  monitor.New(endpointStore, prober, policy, monitorConfig, logger),
		clock:    clock,
		logger:   logger.With("component", "engine"),
	}
}

// Start seeds the store from config and launches the health monitor.
func (e *Engine) Start(ctx context.Context, seeds []config.EndpointConfig) error {
	if err := e.Seed(ctx, seeds); err != nil {
		return err
	}
	return e.monitor.Start(ctx)
}

// Stop halts the monitor, honouring the context as a grace period for
// any in-flight probe cycle.
func (e *Engine) Stop(ctx context.Context) error {
	return e.monitor.Stop(ctx)
}

// Seed upserts configured endpoints into the store. Re-seeding only
// refreshes administrative fields: endpoints without an explicit ID get
// one derived from kind, address and group, so the same config entry
// always lands on the same record across reloads and restarts.
func (e *Engine) Seed(ctx context.Context, seeds []config.EndpointConfig) error {
	for _, seed := range seeds {
		id := seed.ID
		if id == "" {
			id = seedID(seed)
		}
		endpoint := &domain.Endpoint{
			ID:       id,
			Address:  seed.Address,
			Kind:     domain.EndpointKind(seed.Kind),
			Group:    seed.Group,
			Username: seed.Username,
			Password: seed.Password,
			Priority: seed.Priority,
			Active:   true,
		}
		if err := e.store.Upsert(ctx, endpoint); err != nil {
			return &domain.StoreError{Err: err, Operation: "Upsert", ID: id}
		}
	}
	if len(seeds) > 0 {
		e.logger.Info("Seeded endpoints", "count", len(seeds))
	}
	return nil
}

// seedID is a stable identity for a config entry without an explicit ID.
func seedID(seed config.EndpointConfig) string {
	key := seed.Kind + "|" + seed.Address + "|" + seed.Group
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Select returns the best currently-eligible endpoint for the caller's
// constraints, or domain.ErrNoEligibleEndpoint. Never blocks on network
// I/O; it only reads the latest snapshot.
func (e *Engine) Select(ctx context.Context, constraints domain.Constraints) (*domain.Endpoint, error) {
	endpoints, err := e.store.ListActive(ctx)
	if err != nil {
		return nil, &domain.StoreError{Err: err, Operation: "ListActive"}
	}
	return e.selector.Select(ctx, endpoints, constraints)
}

// ReportOutcome records how a selected endpoint behaved under real
// traffic. Same counter path as a probe outcome, synchronous and cheap:
// the network call already happened in the caller. Safe to call from
// many request handlers at once alongside the monitor's own writes.
// Deactivation is evaluated on the next monitor cycle.
func (e *Engine) ReportOutcome(ctx context.Context, id string, outcome domain.Outcome) error {
	if _, err := e.store.ApplyOutcome(ctx, id, outcome); err != nil {
		return err
	}
	return nil
}

// PoolSummary is a point-in-time view of the pool for periodic logging.
type PoolSummary struct {
	Total    int
	Active   int
	Inactive int
	Untested int
}

// Summary reports pool composition; diagnostic only.
func (e *Engine) Summary(ctx context.Context) (PoolSummary, error) {
	endpoints, err := e.store.ListAll(ctx)
	if err != nil {
		return PoolSummary{}, &domain.StoreError{Err: err, Operation: "ListAll"}
	}
	summary := PoolSummary{Total: len(endpoints)}
	for _, endpoint := range endpoints {
		if endpoint.Active {
			summary.Active++
		} else {
			summary.Inactive++
		}
		if endpoint.TotalAttempts() == 0 {
			summary.Untested++
		}
	}
	return summary, nil
}

// MonitorRunning reports whether the background monitor is active.
func (e *Engine) MonitorRunning() bool {
	return e.monitor.IsRunning()
}

// WaitForFirstCycle is a convenience for tests and startup probes: it
// polls until at least one endpoint has been checked or the context ends.
func (e *Engine) WaitForFirstCycle(ctx context.Context, pollEvery time.Duration) error {
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()
	for {
		endpoints, err := e.store.ListAll(ctx)
		if err == nil {
			for _, endpoint := range endpoints {
				if endpoint.TotalAttempts() > 0 {
					return nil
				}
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
