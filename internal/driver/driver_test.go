package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotpilot/lotpilot/internal/actionlog"
	"github.com/lotpilot/lotpilot/internal/decision"
	"github.com/lotpilot/lotpilot/internal/domain"
	"github.com/lotpilot/lotpilot/internal/executor"
	"github.com/lotpilot/lotpilot/internal/store"
)

const inventoryCSV = `vin,stock_number,make,model,year,cost,current_price,days_in_inventory
ABC123,ST-1001,Honda,Accord,2021,15000.00,20000.00,78
`

const inquiriesCSV = `inquiry_id,vin,customer_name,customer_email,customer_type,status
INQ-0001,ABC123,Dana Smith,dana@example.com,hot_lead,new
`

// fakeSource scripts Propose behavior per call.
type fakeSource struct {
	mu       sync.Mutex
	calls    int
	ds       *domain.DecisionSet
	err      error
	panicMsg string
}

func (f *fakeSource) Propose(ctx context.Context, snap domain.Snapshot) (*domain.DecisionSet, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.ds != nil {
		return f.ds, nil
	}
	return domain.EmptyDecisionSet(), nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type nopEmail struct{}

func (nopEmail) Send(to, subject, body string) (*domain.EmailReceipt, error) {
	return &domain.EmailReceipt{Sent: true}, nil
}

type nopSocial struct{}

func (nopSocial) Publish(platform, content, vehicleVIN string) (*domain.PostReceipt, error) {
	return &domain.PostReceipt{Platform: platform}, nil
}

func newTestDriver(t *testing.T, source domain.DecisionSource) *Driver {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.InventoryFile), []byte(inventoryCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.InquiriesFile), []byte(inquiriesCSV), 0644))

	st := store.New(dir, zerolog.Nop())
	log := actionlog.New(filepath.Join(dir, "action_log.json"), zerolog.Nop())
	exec := executor.New(st, nopEmail{}, nopSocial{}, log, zerolog.Nop())
	validator := decision.NewValidator(zerolog.Nop())

	return New(st, source, validator, exec, domain.ModeSimulate, zerolog.Nop())
}

func TestNewDriverStartsIdle(t *testing.T) {
	d := newTestDriver(t, &fakeSource{})

	status := d.Status()
	assert.Equal(t, StateIdle, status.State)
	assert.Equal(t, 0, status.RunCount)
	assert.True(t, status.LastRun.IsZero())
}

func TestRunCycle_Manual(t *testing.T) {
	source := &fakeSource{}
	d := newTestDriver(t, source)

	summary, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 1, source.callCount())
	status := d.Status()
	assert.Equal(t, StateIdle, status.State, "manual cycle does not start the loop")
	assert.Equal(t, 1, status.RunCount)
	assert.False(t, status.LastRun.IsZero())
}

func TestRunCycle_ExecutesValidatedDecisions(t *testing.T) {
	ds := domain.EmptyDecisionSet()
	ds.PriceAdjustments = []domain.PriceAdjustment{
		{VIN: "ABC123", RecommendedPrice: 18000},
		{VIN: "HALLUCINATED", RecommendedPrice: 9999},
	}
	d := newTestDriver(t, &fakeSource{ds: ds})

	summary, err := d.RunCycle(context.Background())
	require.NoError(t, err)

	// The hallucinated VIN was filtered before execution, so only one
	// result exists and it succeeded.
	results := summary.ActionsByType[domain.CategoryPriceAdjustments]
	require.Len(t, results, 1)
	assert.Equal(t, "ABC123", results[0].VIN)
	assert.Equal(t, domain.StatusSuccess, results[0].Status)
}

func TestStart_RunsFirstCycleImmediately(t *testing.T) {
	source := &fakeSource{}
	d := newTestDriver(t, source)

	require.NoError(t, d.Start(time.Hour))
	defer d.Stop()

	// Start returns only after the first cycle completed.
	assert.Equal(t, 1, source.callCount())
	status := d.Status()
	assert.Equal(t, StateRunning, status.State)
	assert.Equal(t, 1, status.RunCount)
}

func TestStart_InvalidInterval(t *testing.T) {
	d := newTestDriver(t, &fakeSource{})
	assert.Error(t, d.Start(0))
	assert.Error(t, d.Start(-time.Minute))
}

func TestStart_WhileRunningIsNoOp(t *testing.T) {
	source := &fakeSource{}
	d := newTestDriver(t, source)

	require.NoError(t, d.Start(time.Hour))
	defer d.Stop()

	require.NoError(t, d.Start(time.Hour))
	assert.Equal(t, 1, source.callCount(), "second Start must not trigger another immediate cycle")
	assert.Equal(t, StateRunning, d.Status().State)
}

func TestStop(t *testing.T) {
	d := newTestDriver(t, &fakeSource{})

	require.NoError(t, d.Start(time.Hour))
	d.Stop()

	assert.Equal(t, StateStopped, d.Status().State)

	// Stopping again is harmless.
	d.Stop()
	assert.Equal(t, StateStopped, d.Status().State)
}

func TestStop_WhenIdleIsNoOp(t *testing.T) {
	d := newTestDriver(t, &fakeSource{})
	d.Stop()
	assert.Equal(t, StateIdle, d.Status().State)
}

func TestRestartAfterStop(t *testing.T) {
	source := &fakeSource{}
	d := newTestDriver(t, source)

	require.NoError(t, d.Start(time.Hour))
	d.Stop()
	require.NoError(t, d.Start(time.Hour))
	defer d.Stop()

	assert.Equal(t, StateRunning, d.Status().State)
	assert.Equal(t, 2, source.callCount())
	assert.Equal(t, 2, d.Status().RunCount)
}

func TestCycle_SourceErrorStillCompletes(t *testing.T) {
	d := newTestDriver(t, &fakeSource{err: errors.New("model unavailable")})

	summary, err := d.RunCycle(context.Background())
	require.NoError(t, err, "a failed decision source degrades to an empty set")
	assert.Equal(t, 0, summary.TotalActions)
	assert.Equal(t, 1, d.Status().RunCount)
	assert.Empty(t, d.Status().LastErr)
}

func TestCycle_PanicIsContained(t *testing.T) {
	source := &fakeSource{panicMsg: "boom"}
	d := newTestDriver(t, source)

	summary, err := d.RunCycle(context.Background())
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "boom")

	status := d.Status()
	assert.Equal(t, 0, status.RunCount, "a failed cycle does not count")
	assert.Contains(t, status.LastErr, "boom")

	// The driver recovers on the next cycle.
	source.panicMsg = ""
	_, err = d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, d.Status().RunCount)
	assert.Empty(t, d.Status().LastErr)
}

func TestCycle_ActionLogFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.InventoryFile), []byte(inventoryCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.InquiriesFile), []byte(inquiriesCSV), 0644))

	// The log path's parent is a regular file, so every append fails.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	st := store.New(dir, zerolog.Nop())
	log := actionlog.New(filepath.Join(blocker, "action_log.json"), zerolog.Nop())
	exec := executor.New(st, nopEmail{}, nopSocial{}, log, zerolog.Nop())
	d := New(st, &fakeSource{}, decision.NewValidator(zerolog.Nop()), exec, domain.ModeSimulate, zerolog.Nop())

	summary, err := d.RunCycle(context.Background())
	require.NoError(t, err, "a failed history write must not fail the cycle")
	require.NotNil(t, summary)

	status := d.Status()
	assert.Equal(t, 1, status.RunCount)
	assert.Empty(t, status.LastErr)
}

func TestCycle_MissingStoreFails(t *testing.T) {
	st := store.New(t.TempDir(), zerolog.Nop())
	log := actionlog.New(filepath.Join(t.TempDir(), "action_log.json"), zerolog.Nop())
	exec := executor.New(st, nopEmail{}, nopSocial{}, log, zerolog.Nop())
	d := New(st, &fakeSource{}, decision.NewValidator(zerolog.Nop()), exec, domain.ModeSimulate, zerolog.Nop())

	_, err := d.RunCycle(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, d.Status().RunCount)
	assert.NotEmpty(t, d.Status().LastErr)
}

func TestExclusive(t *testing.T) {
	d := newTestDriver(t, &fakeSource{})

	ran := false
	err := d.Exclusive(func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	wantErr := errors.New("job failed")
	assert.ErrorIs(t, d.Exclusive(func() error { return wantErr }), wantErr)
}
