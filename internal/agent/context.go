package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lotpilot/lotpilot/internal/domain"
)

// Inventory older than this is considered aged; fresher than freshDays is
// considered fresh. Thresholds match the dealership decision framework in
// the prompt.
const (
	agedDays  = 60
	freshDays = 30
)

// How many records of each kind the prompt context carries.
const contextRecordLimit = 10

// agedVehicleView is the subset of inventory fields handed to the model.
type agedVehicleView struct {
	VIN             string  `json:"vin"`
	StockNumber     string  `json:"stock_number"`
	Year            int     `json:"year"`
	Make            string  `json:"make"`
	Model           string  `json:"model"`
	CurrentPrice    float64 `json:"current_price"`
	Cost            float64 `json:"cost"`
	DaysInInventory int     `json:"days_in_inventory"`
}

type inquiryView struct {
	InquiryID    string `json:"inquiry_id"`
	CustomerName string `json:"customer_name"`
	CustomerType string `json:"customer_type"`
	Message      string `json:"message"`
	StockNumber  string `json:"stock_number"`
	VIN          string `json:"vin"`
}

// competitorPriceStat aggregates competitor listings per make and model.
type competitorPriceStat struct {
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	MeanPrice float64 `json:"mean_price"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	Listings  int     `json:"listings"`
}

// competitorStats groups listings by make+model and computes price
// aggregates, sorted by make then model for deterministic output.
func competitorStats(listings []domain.CompetitorListing) []competitorPriceStat {
	groups := make(map[string][]float64)
	for _, l := range listings {
		key := l.Make + "\x00" + l.Model
		groups[key] = append(groups[key], l.Price)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	stats := make([]competitorPriceStat, 0, len(keys))
	for _, key := range keys {
		prices := groups[key]
		parts := strings.SplitN(key, "\x00", 2)
		stats = append(stats, competitorPriceStat{
			Make:      parts[0],
			Model:     parts[1],
			MeanPrice: stat.Mean(prices, nil),
			MinPrice:  floats.Min(prices),
			MaxPrice:  floats.Max(prices),
			Listings:  len(prices),
		})
	}
	return stats
}

// agedInventory returns vehicles on the lot longer than agedDays, most
// aged first.
func agedInventory(inventory []domain.InventoryRecord) []domain.InventoryRecord {
	var aged []domain.InventoryRecord
	for _, rec := range inventory {
		if rec.DaysInInventory > agedDays {
			aged = append(aged, rec)
		}
	}
	sort.SliceStable(aged, func(i, j int) bool {
		return aged[i].DaysInInventory > aged[j].DaysInInventory
	})
	return aged
}

func newInquiries(inquiries []domain.InquiryRecord) []domain.InquiryRecord {
	var fresh []domain.InquiryRecord
	for _, rec := range inquiries {
		if rec.Status == domain.InquiryStatusNew {
			fresh = append(fresh, rec)
		}
	}
	return fresh
}

// buildContext renders the snapshot into the textual context handed to the
// model. Identifiers are included verbatim; the prompt instructs the model
// to use only these.
func buildContext(snap domain.Snapshot) string {
	aged := agedInventory(snap.Inventory)
	fresh := 0
	totalValue := 0.0
	totalDays := 0
	for _, rec := range snap.Inventory {
		totalValue += rec.CurrentPrice
		totalDays += rec.DaysInInventory
		if rec.DaysInInventory < freshDays {
			fresh++
		}
	}
	avgDays := 0.0
	if len(snap.Inventory) > 0 {
		avgDays = float64(totalDays) / float64(len(snap.Inventory))
	}

	agedViews := make([]agedVehicleView, 0, contextRecordLimit)
	for _, rec := range aged {
		if len(agedViews) == contextRecordLimit {
			break
		}
		agedViews = append(agedViews, agedVehicleView{
			VIN:             rec.VIN,
			StockNumber:     rec.StockNumber,
			Year:            rec.Year,
			Make:            rec.Make,
			Model:           rec.Model,
			CurrentPrice:    rec.CurrentPrice,
			Cost:            rec.Cost,
			DaysInInventory: rec.DaysInInventory,
		})
	}

	inquiryViews := make([]inquiryView, 0, contextRecordLimit)
	for _, rec := range newInquiries(snap.Inquiries) {
		if len(inquiryViews) == contextRecordLimit {
			break
		}
		inquiryViews = append(inquiryViews, inquiryView{
			InquiryID:    rec.InquiryID,
			CustomerName: rec.CustomerName,
			CustomerType: rec.CustomerType,
			Message:      rec.Message,
			StockNumber:  rec.StockNumber,
			VIN:          rec.VIN,
		})
	}

	agedJSON, _ := json.MarshalIndent(agedViews, "", "  ")
	inquiriesJSON, _ := json.MarshalIndent(inquiryViews, "", "  ")
	competitorsJSON, _ := json.MarshalIndent(competitorStats(snap.Competitors), "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "INVENTORY OVERVIEW:\n")
	fmt.Fprintf(&b, "- Total vehicles: %d\n", len(snap.Inventory))
	fmt.Fprintf(&b, "- Aged inventory (%d+ days): %d\n", agedDays, len(aged))
	fmt.Fprintf(&b, "- Fresh inventory (< %d days): %d\n", freshDays, fresh)
	fmt.Fprintf(&b, "- Total value: $%.2f\n", totalValue)
	fmt.Fprintf(&b, "- Average days in stock: %.1f\n\n", avgDays)
	fmt.Fprintf(&b, "TOP AGED VEHICLES (MUST USE EXACT VINs & STOCK NUMBERS):\n%s\n\n", agedJSON)
	fmt.Fprintf(&b, "CUSTOMER INQUIRIES (MUST USE EXACT inquiry_id):\n%s\n\n", inquiriesJSON)
	fmt.Fprintf(&b, "COMPETITOR PRICE SUMMARY (mean/min/max per make and model):\n%s\n\n", competitorsJSON)
	fmt.Fprintf(&b, "CRITICAL: When making decisions, you MUST use the EXACT VINs, stock_numbers, and inquiry_ids from above.\n")
	fmt.Fprintf(&b, "Do not generate fake IDs - only use the real ones provided.\n")

	return b.String()
}
