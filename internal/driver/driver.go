// Package driver runs the autonomous agent loop: reload the record store,
// obtain decisions, validate, execute, summarize. One cycle runs to
// completion before the next begins; the driver's mutex is the single
// writer lock for the record store and action log.
package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lotpilot/lotpilot/internal/decision"
	"github.com/lotpilot/lotpilot/internal/domain"
	"github.com/lotpilot/lotpilot/internal/executor"
	"github.com/lotpilot/lotpilot/internal/store"
)

// State of the autonomous loop.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// How often the timer loop polls for due work.
const pollInterval = time.Second

// Driver owns the cycle loop state. All state transitions go through
// Start/Stop; counters update only on cycles that complete cleanly.
type Driver struct {
	store     *store.Store
	source    domain.DecisionSource
	validator *decision.Validator
	executor  *executor.Executor
	mode      domain.ExecutionMode
	log       zerolog.Logger

	cycleMu sync.Mutex // serializes cycles: timer, manual triggers, housekeeping

	mu       sync.Mutex // guards the fields below
	state    State
	runCount int
	lastRun  time.Time
	lastErr  string
	stop     chan struct{}
	wg       sync.WaitGroup
}

// Status is a point-in-time view of the driver for the dashboard.
type Status struct {
	State    State     `json:"state"`
	Mode     string    `json:"mode"`
	RunCount int       `json:"run_count"`
	LastRun  time.Time `json:"last_run"`
	LastErr  string    `json:"last_error,omitempty"`
}

// New creates a driver.
func New(st *store.Store, source domain.DecisionSource, validator *decision.Validator, exec *executor.Executor, mode domain.ExecutionMode, log zerolog.Logger) *Driver {
	return &Driver{
		store:     st,
		source:    source,
		validator: validator,
		executor:  exec,
		mode:      mode,
		log:       log.With().Str("component", "driver").Logger(),
		state:     StateIdle,
	}
}

// Start transitions Idle (or Stopped) to Running, executes one cycle
// immediately and synchronously, then fires recurring cycles at interval
// until Stop. Starting a running driver is a no-op.
func (d *Driver) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	d.mu.Lock()
	if d.state == StateRunning {
		d.mu.Unlock()
		d.log.Warn().Msg("Driver already running, ignoring start")
		return nil
	}
	d.state = StateRunning
	d.stop = make(chan struct{})
	stop := d.stop
	d.mu.Unlock()

	d.log.Info().
		Dur("interval", interval).
		Str("mode", d.mode.String()).
		Msg("Autonomous agent started")

	// First cycle runs before Start returns.
	d.runScheduledCycle()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		next := time.Now().Add(interval)
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				// Stop wins over a due tick.
				select {
				case <-stop:
					return
				default:
				}
				if now.Before(next) {
					continue
				}
				d.runScheduledCycle()
				next = time.Now().Add(interval)
			}
		}
	}()

	return nil
}

// Stop transitions Running to Stopped. It takes effect before the next
// scheduled cycle fires; an in-flight cycle completes.
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		return
	}
	d.state = StateStopped
	close(d.stop)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info().Msg("Autonomous agent stopped")
}

// Status returns a snapshot of the driver state.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		State:    d.state,
		Mode:     d.mode.String(),
		RunCount: d.runCount,
		LastRun:  d.lastRun,
		LastErr:  d.lastErr,
	}
}

// RunCycle is the manual on-demand entry point. It shares the cycle mutex
// with the timer loop, so a manual trigger and a scheduled cycle can never
// mutate the record store concurrently.
func (d *Driver) RunCycle(ctx context.Context) (*domain.CycleSummary, error) {
	d.cycleMu.Lock()
	defer d.cycleMu.Unlock()
	return d.cycle(ctx)
}

// Exclusive runs fn while holding the cycle mutex. Housekeeping jobs that
// touch the record store outside a cycle go through here.
func (d *Driver) Exclusive(fn func() error) error {
	d.cycleMu.Lock()
	defer d.cycleMu.Unlock()
	return fn()
}

// runScheduledCycle wraps a cycle in the top-level failure boundary: any
// error or panic is logged and the loop continues. A single bad cycle is
// never fatal.
func (d *Driver) runScheduledCycle() {
	summary, err := d.RunCycle(context.Background())
	if err != nil {
		d.log.Error().Err(err).Msg("Agent cycle failed")
		return
	}
	d.log.Info().
		Int("total", summary.TotalActions).
		Int("successful", summary.SuccessfulActions).
		Int("failed", summary.FailedActions).
		Msg("Agent cycle complete")
}

// cycle executes one full pass: reload, propose, validate, execute.
// Callers must hold cycleMu.
func (d *Driver) cycle(ctx context.Context) (summary *domain.CycleSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary = nil
			err = fmt.Errorf("cycle panicked: %v", r)
		}
		if err != nil {
			d.mu.Lock()
			d.lastErr = err.Error()
			d.mu.Unlock()
		}
	}()

	d.mu.Lock()
	cycleNum := d.runCount + 1
	d.mu.Unlock()
	d.log.Info().Int("cycle", cycleNum).Msg("Starting agent cycle")

	if err := d.store.Load(); err != nil {
		return nil, fmt.Errorf("load record store: %w", err)
	}

	snap := d.store.Snapshot()
	d.log.Info().
		Int("inventory", len(snap.Inventory)).
		Int("inquiries", len(snap.Inquiries)).
		Msg("Record store loaded")

	proposed, err := d.source.Propose(ctx, snap)
	if err != nil {
		d.log.Warn().Err(err).Msg("Decision source failed, executing empty decision set")
		proposed = domain.EmptyDecisionSet()
	}
	if proposed == nil {
		proposed = domain.EmptyDecisionSet()
	}

	validated := d.validator.Validate(proposed, d.store.VINs(), d.store.InquiryIDs())

	summary, execErr := d.executor.ExecuteAll(validated, d.mode)
	if execErr != nil {
		// Summary is still valid; the action log write failed.
		d.log.Error().Err(execErr).Msg("Cycle executed but history was not persisted")
	}

	d.mu.Lock()
	d.runCount++
	d.lastRun = time.Now()
	d.lastErr = ""
	d.mu.Unlock()

	return summary, nil
}
