// Package domain contains the core data model for the dealership agent.
// Types here are pure: no I/O, no infrastructure dependencies.
package domain

import "time"

// Inquiry status values. Once an inquiry reaches "responded" it never reverts.
const (
	InquiryStatusNew       = "new"
	InquiryStatusPending   = "pending"
	InquiryStatusResponded = "responded"
)

// InventoryRecord is one vehicle on the lot. VIN and StockNumber are both
// unique identifiers; VIN is the primary join key.
type InventoryRecord struct {
	VIN             string    `json:"vin"`
	StockNumber     string    `json:"stock_number"`
	Make            string    `json:"make"`
	Model           string    `json:"model"`
	Year            int       `json:"year"`
	Trim            string    `json:"trim"`
	Mileage         int       `json:"mileage"`
	Color           string    `json:"color"`
	Condition       string    `json:"condition"`
	Cost            float64   `json:"cost"`
	CurrentPrice    float64   `json:"current_price"`
	MSRP            float64   `json:"msrp"`
	DaysInInventory int       `json:"days_in_inventory"`
	LastPriceChange time.Time `json:"last_price_change"`
	ViewCount       int       `json:"view_count"`
	InquiryCount    int       `json:"inquiry_count"`
}

// Margin returns the profit margin of the current price over cost,
// as a fraction (0.15 = 15%). Returns 0 when cost is not positive.
func (r *InventoryRecord) Margin() float64 {
	if r.Cost <= 0 {
		return 0
	}
	return (r.CurrentPrice - r.Cost) / r.Cost
}

// InquiryRecord is one customer lead, keyed by InquiryID.
type InquiryRecord struct {
	InquiryID       string    `json:"inquiry_id"`
	VIN             string    `json:"vin"`
	StockNumber     string    `json:"stock_number"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerType    string    `json:"customer_type"` // hot_lead, warm_lead, cold_lead, price_shopper
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
	Status          string    `json:"status"` // new, pending, responded
	BudgetMax       float64   `json:"budget_max"`
	FinancingNeeded bool      `json:"financing_needed"`
}

// SaleRecord is one historical sale, used for analytics only.
type SaleRecord struct {
	SaleID        string    `json:"sale_id"`
	SaleDate      time.Time `json:"sale_date"`
	Make          string    `json:"make"`
	Year          int       `json:"year"`
	OriginalPrice float64   `json:"original_price"`
	SoldPrice     float64   `json:"sold_price"`
	Discount      float64   `json:"discount"`
	DaysToSell    int       `json:"days_to_sell"`
	GrossProfit   float64   `json:"gross_profit"`
}

// CompetitorListing is one competitor's listing for a comparable vehicle.
// Competitor data is read-only context for the reasoning service.
type CompetitorListing struct {
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Year       int     `json:"year"`
	Mileage    int     `json:"mileage"`
	Price      float64 `json:"price"`
	DealerName string  `json:"dealer_name"`
}

// Snapshot is a point-in-time copy of the record store handed to the
// reasoning service. Mutating a snapshot never affects authoritative state.
type Snapshot struct {
	Inventory   []InventoryRecord
	Inquiries   []InquiryRecord
	Competitors []CompetitorListing
	Sales       []SaleRecord
}
