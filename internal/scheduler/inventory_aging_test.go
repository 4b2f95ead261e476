package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotpilot/lotpilot/internal/store"
)

// passthroughSerializer runs fn directly; the real implementation is the
// cycle driver's exclusive section.
type passthroughSerializer struct {
	entered int
}

func (s *passthroughSerializer) Exclusive(fn func() error) error {
	s.entered++
	return fn()
}

func TestInventoryAgingJob(t *testing.T) {
	dir := t.TempDir()
	inventory := `vin,stock_number,make,model,year,cost,current_price,days_in_inventory
ABC123,ST-1001,Honda,Accord,2021,15000.00,20000.00,78
DEF456,ST-1002,Toyota,Camry,2022,19000.00,24500.00,25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.InventoryFile), []byte(inventory), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.InquiriesFile), []byte("inquiry_id,customer_name\n"), 0644))

	st := store.New(dir, zerolog.Nop())
	ser := &passthroughSerializer{}
	job := NewInventoryAgingJob(st, ser, zerolog.Nop())

	assert.Equal(t, "inventory_aging", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 1, ser.entered, "the job must take the exclusive section")

	// The increment is persisted.
	require.NoError(t, st.Load())
	assert.Equal(t, 79, st.FindVehicle("ABC123").DaysInInventory)
	assert.Equal(t, 26, st.FindVehicle("DEF456").DaysInInventory)
}

func TestInventoryAgingJob_MissingStore(t *testing.T) {
	st := store.New(t.TempDir(), zerolog.Nop())
	job := NewInventoryAgingJob(st, &passthroughSerializer{}, zerolog.Nop())

	assert.Error(t, job.Run())
}

func TestSchedulerAddJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := NewInventoryAgingJob(store.New(t.TempDir(), zerolog.Nop()), &passthroughSerializer{}, zerolog.Nop())

	assert.NoError(t, s.AddJob("@daily", job))
	assert.Error(t, s.AddJob("not a schedule", job))
}
