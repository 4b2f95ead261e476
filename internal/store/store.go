// Package store provides read/write access to the authoritative dealership
// tables: inventory, customer inquiries, sales history and competitor
// listings. Each table is a flat CSV file read in full at the start of a
// cycle and rewritten in full after mutation.
//
// The store is NOT safe for concurrent writers. The cycle driver serializes
// all access; see driver.Exclusive.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/lotpilot/lotpilot/internal/domain"
)

// File names within the data directory.
const (
	InventoryFile   = "inventory.csv"
	InquiriesFile   = "customer_inquiries.csv"
	SalesFile       = "sales_history.csv"
	CompetitorsFile = "competitors.csv"
)

// Store holds the loaded tables and knows how to persist them.
type Store struct {
	dataDir string
	log     zerolog.Logger

	inventory   []domain.InventoryRecord
	inquiries   []domain.InquiryRecord
	sales       []domain.SaleRecord
	competitors []domain.CompetitorListing
}

// New creates a store rooted at dataDir. Call Load before first use.
func New(dataDir string, log zerolog.Logger) *Store {
	return &Store{
		dataDir: dataDir,
		log:     log.With().Str("component", "store").Logger(),
	}
}

// Load reads all tables from disk, replacing any previously loaded state.
// Inventory and inquiries are required; sales and competitor files are
// optional context and load as empty when absent.
func (s *Store) Load() error {
	inventory, err := readInventory(s.path(InventoryFile))
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	inquiries, err := readInquiries(s.path(InquiriesFile))
	if err != nil {
		return fmt.Errorf("load inquiries: %w", err)
	}

	sales, err := readSales(s.path(SalesFile))
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("load sales history: %w", err)
		}
		sales = nil
	}

	competitors, err := readCompetitors(s.path(CompetitorsFile))
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("load competitors: %w", err)
		}
		competitors = nil
	}

	s.inventory = inventory
	s.inquiries = inquiries
	s.sales = sales
	s.competitors = competitors

	s.log.Debug().
		Int("inventory", len(inventory)).
		Int("inquiries", len(inquiries)).
		Int("sales", len(sales)).
		Int("competitors", len(competitors)).
		Msg("Record store loaded")

	return nil
}

// Snapshot returns a deep copy of all tables for the reasoning service.
func (s *Store) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Inventory:   append([]domain.InventoryRecord(nil), s.inventory...),
		Inquiries:   append([]domain.InquiryRecord(nil), s.inquiries...),
		Sales:       append([]domain.SaleRecord(nil), s.sales...),
		Competitors: append([]domain.CompetitorListing(nil), s.competitors...),
	}
}

// Inventory returns the loaded inventory records.
func (s *Store) Inventory() []domain.InventoryRecord { return s.inventory }

// Inquiries returns the loaded inquiry records.
func (s *Store) Inquiries() []domain.InquiryRecord { return s.inquiries }

// Sales returns the loaded sales history.
func (s *Store) Sales() []domain.SaleRecord { return s.sales }

// Competitors returns the loaded competitor listings.
func (s *Store) Competitors() []domain.CompetitorListing { return s.competitors }

// VINs returns the set of authoritative vehicle identifiers.
func (s *Store) VINs() map[string]struct{} {
	vins := make(map[string]struct{}, len(s.inventory))
	for i := range s.inventory {
		vins[s.inventory[i].VIN] = struct{}{}
	}
	return vins
}

// InquiryIDs returns the set of authoritative inquiry identifiers.
func (s *Store) InquiryIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.inquiries))
	for i := range s.inquiries {
		ids[s.inquiries[i].InquiryID] = struct{}{}
	}
	return ids
}

// FindVehicle returns the inventory record for vin, or nil if absent.
// The returned pointer aliases store state; it is only valid until the
// next Load.
func (s *Store) FindVehicle(vin string) *domain.InventoryRecord {
	for i := range s.inventory {
		if s.inventory[i].VIN == vin {
			return &s.inventory[i]
		}
	}
	return nil
}

// FindInquiry returns the inquiry record for id, or nil if absent.
func (s *Store) FindInquiry(id string) *domain.InquiryRecord {
	for i := range s.inquiries {
		if s.inquiries[i].InquiryID == id {
			return &s.inquiries[i]
		}
	}
	return nil
}

// SetPrice updates a vehicle's current price and price-change timestamp
// in memory. Call SaveInventory to persist.
func (s *Store) SetPrice(vin string, price float64, ts time.Time) error {
	rec := s.FindVehicle(vin)
	if rec == nil {
		return fmt.Errorf("vehicle %s not found", vin)
	}
	if price <= 0 {
		return fmt.Errorf("price must be positive, got %.2f", price)
	}
	rec.CurrentPrice = price
	rec.LastPriceChange = ts
	return nil
}

// MarkResponded transitions an inquiry to the responded status in memory.
// The transition is monotone: an already-responded inquiry stays responded.
func (s *Store) MarkResponded(inquiryID string) error {
	rec := s.FindInquiry(inquiryID)
	if rec == nil {
		return fmt.Errorf("inquiry %s not found", inquiryID)
	}
	rec.Status = domain.InquiryStatusResponded
	return nil
}

// AgeInventory increments days_in_inventory on every vehicle by one day.
// The daily housekeeping job calls this once per calendar day.
func (s *Store) AgeInventory() {
	for i := range s.inventory {
		s.inventory[i].DaysInInventory++
	}
}

// SaveInventory rewrites the inventory file in full.
func (s *Store) SaveInventory() error {
	if err := writeInventory(s.path(InventoryFile), s.inventory); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

// SaveInquiries rewrites the inquiries file in full.
func (s *Store) SaveInquiries() error {
	if err := writeInquiries(s.path(InquiriesFile), s.inquiries); err != nil {
		return fmt.Errorf("save inquiries: %w", err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dataDir, name)
}
