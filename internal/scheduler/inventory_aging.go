package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lotpilot/lotpilot/internal/store"
)

// Serializer grants exclusive access to the record store. The cycle driver
// implements this; the aging job must never write the store while a cycle
// is mid-flight.
type Serializer interface {
	Exclusive(fn func() error) error
}

// InventoryAgingJob advances days_in_inventory on every vehicle by one.
// Scheduled daily: a long-running deployment has to age its inventory or
// the reasoning service never sees vehicles cross the aged threshold.
type InventoryAgingJob struct {
	store      *store.Store
	serializer Serializer
	log        zerolog.Logger
}

// NewInventoryAgingJob creates the job.
func NewInventoryAgingJob(st *store.Store, serializer Serializer, log zerolog.Logger) *InventoryAgingJob {
	return &InventoryAgingJob{
		store:      st,
		serializer: serializer,
		log:        log.With().Str("job", "inventory_aging").Logger(),
	}
}

// Name implements Job.
func (j *InventoryAgingJob) Name() string { return "inventory_aging" }

// Run implements Job.
func (j *InventoryAgingJob) Run() error {
	return j.serializer.Exclusive(func() error {
		if err := j.store.Load(); err != nil {
			return fmt.Errorf("reload store: %w", err)
		}
		j.store.AgeInventory()
		if err := j.store.SaveInventory(); err != nil {
			return err
		}
		j.log.Info().Int("vehicles", len(j.store.Inventory())).Msg("Inventory aged by one day")
		return nil
	})
}
