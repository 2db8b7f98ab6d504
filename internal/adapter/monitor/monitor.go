package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soria/relaypool/internal/core/domain"
)

const (
	DefaultProbeConcurrency = 8
	DefaultCycleTimeout     = 2 * time.Minute
)

// Config bounds one monitor instance.
type Config struct {
	Interval         time.Duration
	FallbackInterval time.Duration
	CycleTimeout     time.Duration
	ProbeConcurrency int
}

// Monitor runs the recurring health cycle: snapshot the active pool,
// probe every endpoint with bounded parallelism, fold each outcome into
// the store and evaluate the deactivation policy per endpoint. A store
// failure never crashes the monitor; it logs, sleeps the fallback
// interval and tries again for as long as it runs.
type Monitor struct {
	store  domain.EndpointStore
	prober domain.Prober
	policy Policy
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func New(store domain.EndpointStore, prober domain.Prober, policy Policy, cfg Config, logger *slog.Logger) *Monitor {
	if cfg.ProbeConcurrency < 1 {
		cfg.ProbeConcurrency = DefaultProbeConcurrency
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = DefaultCycleTimeout
	}
	if cfg.FallbackInterval <= 0 {
		cfg.FallbackInterval = time.Minute
	}
	return &Monitor{
		store:  store,
		prober: prober,
		policy: policy,
		cfg:    cfg,
		logger: logger.With("component", "monitor"),
		stopCh: make(chan struct{}),
	}
}

// Start launches the recurring cycle. The first cycle runs immediately.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return domain.ErrMonitorRunning
	}
	m.running = true
	m.stopCh = make(chan struct{})

	m.wg.Add(1)
	go m.run(ctx)

	m.logger.Info("Health monitor started",
		"interval", m.cfg.Interval,
		"probe_concurrency", m.cfg.ProbeConcurrency)
	return nil
}

// Stop halts the monitor. An in-flight cycle is allowed to finish (its
// probes are bounded by the cycle timeout); Stop returns early with the
// context's error if the caller's grace period expires first.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Health monitor stopped")
		return nil
	case <-ctx.Done():
		m.logger.Warn("Health monitor stop grace period expired, abandoning in-flight cycle")
		return ctx.Err()
	}
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		sleep := m.cfg.Interval
		if err := m.runCycle(ctx); err != nil {
			// Transient store trouble: back off and retry on the
			// next cycle, unconditionally.
			m.logger.Warn("Health cycle failed, backing off",
				"error", err,
				"retry_in", m.cfg.FallbackInterval)
			sleep = m.cfg.FallbackInterval
		}

		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// runCycle executes one full probe batch. Probes run on a
// stop-insulated context so a shutdown mid-cycle never leaves an
// outcome half-applied; the cycle timeout is the hard bound.
func (m *Monitor) runCycle(ctx context.Context) error {
	cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.CycleTimeout)
	defer cancel()

	endpoints, err := m.store.ListActive(cycleCtx)
	if err != nil {
		return &domain.StoreError{Err: err, Operation: "ListActive"}
	}
	if len(endpoints) == 0 {
		m.logger.Debug("No active endpoints to probe")
		return nil
	}

	m.logger.Debug("Probing active endpoints", "count", len(endpoints))
	start := time.Now()

	g := new(errgroup.Group)
	g.SetLimit(m.cfg.ProbeConcurrency)
	for _, endpoint := range endpoints {
		g.Go(func() error {
			m.probeOne(cycleCtx, endpoint)
			return nil
		})
	}
	// Workers never return errors; every outcome is absorbed into stats.
	_ = g.Wait()

	m.logger.Info("Health cycle complete",
		"endpoints", len(endpoints),
		"elapsed", time.Since(start))
	return nil
}

// probeOne checks a single endpoint and applies the result. A store
// failure here is logged and skips only this endpoint, never the batch.
func (m *Monitor) probeOne(ctx context.Context, endpoint *domain.Endpoint) {
	outcome := m.prober.Probe(ctx, endpoint)

	updated, err := m.store.ApplyOutcome(ctx, endpoint.ID, outcome)
	if err != nil {
		m.logger.Warn("Failed to record probe outcome",
			"endpoint", endpoint.ID,
			"error", err)
		return
	}

	if !outcome.Success {
		m.logger.Debug("Probe failed",
			"endpoint", endpoint.ID,
			"reason", outcome.Reason.String(),
			"message", outcome.Message)
	}

	if m.policy.ShouldDeactivate(updated) {
		reason := m.policy.Reason(updated)
		if err := m.store.Deactivate(ctx, updated.ID, reason); err != nil {
			m.logger.Warn("Failed to deactivate endpoint",
				"endpoint", updated.ID,
				"error", err)
			return
		}
		m.logger.Warn("Endpoint deactivated",
			"endpoint", updated.ID,
			"address", updated.Address,
			"success_rate", updated.SuccessRate(),
			"attempts", updated.TotalAttempts())
	}
}

// IsRunning reports whether the recurring cycle is active.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
