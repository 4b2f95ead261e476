package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"gonum.org/v1/gonum/stat"

	"github.com/lotpilot/lotpilot/internal/domain"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// snapshot copies the record store under the cycle lock so reads never
// race a mid-flight cycle.
func (s *Server) snapshot() domain.Snapshot {
	var snap domain.Snapshot
	_ = s.driver.Exclusive(func() error {
		snap = s.store.Snapshot()
		return nil
	})
	return snap
}

// handleHealth responds to GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus responds to GET /api/status with the driver state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.driver.Status())
}

// handleActionHistory responds to GET /api/actions/history?limit=N with
// the most recent cycle summaries, oldest first.
func (s *Server) handleActionHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	history, err := s.actionLog.History(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if history == nil {
		history = []domain.CycleSummary{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

// analyticsSummary is the dashboard aggregate view.
type analyticsSummary struct {
	TotalVehicles        int     `json:"total_vehicles"`
	TotalInventoryValue  float64 `json:"total_inventory_value"`
	AvgDaysInStock       float64 `json:"avg_days_in_stock"`
	AgedInventoryCount   int     `json:"aged_inventory_count"`
	NewInquiries         int     `json:"new_inquiries"`
	RespondedInquiries   int     `json:"responded_inquiries"`
	MeanListingPrice     float64 `json:"mean_listing_price"`
	MeanCompetitorPrice  float64 `json:"mean_competitor_price"`
	PricePositionPercent float64 `json:"price_position_percent"`
	AvgDaysToSell        float64 `json:"avg_days_to_sell"`
	AvgDiscount          float64 `json:"avg_discount"`
}

// handleAnalyticsSummary responds to GET /api/analytics/summary.
func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()

	summary := analyticsSummary{TotalVehicles: len(snap.Inventory)}

	days := make([]float64, 0, len(snap.Inventory))
	prices := make([]float64, 0, len(snap.Inventory))
	for _, rec := range snap.Inventory {
		summary.TotalInventoryValue += rec.CurrentPrice
		days = append(days, float64(rec.DaysInInventory))
		prices = append(prices, rec.CurrentPrice)
		if rec.DaysInInventory > 60 {
			summary.AgedInventoryCount++
		}
	}
	if len(days) > 0 {
		summary.AvgDaysInStock = stat.Mean(days, nil)
		summary.MeanListingPrice = stat.Mean(prices, nil)
	}

	for _, inq := range snap.Inquiries {
		switch inq.Status {
		case domain.InquiryStatusNew:
			summary.NewInquiries++
		case domain.InquiryStatusResponded:
			summary.RespondedInquiries++
		}
	}

	if len(snap.Competitors) > 0 {
		compPrices := make([]float64, 0, len(snap.Competitors))
		for _, c := range snap.Competitors {
			compPrices = append(compPrices, c.Price)
		}
		summary.MeanCompetitorPrice = stat.Mean(compPrices, nil)
		if summary.MeanCompetitorPrice > 0 {
			summary.PricePositionPercent = (summary.MeanListingPrice - summary.MeanCompetitorPrice) /
				summary.MeanCompetitorPrice * 100
		}
	}

	if len(snap.Sales) > 0 {
		sellDays := make([]float64, 0, len(snap.Sales))
		discounts := make([]float64, 0, len(snap.Sales))
		for _, sale := range snap.Sales {
			sellDays = append(sellDays, float64(sale.DaysToSell))
			discounts = append(discounts, sale.Discount)
		}
		summary.AvgDaysToSell = stat.Mean(sellDays, nil)
		summary.AvgDiscount = stat.Mean(discounts, nil)
	}

	s.writeJSON(w, http.StatusOK, summary)
}

// handleInventory responds to GET /api/inventory.
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap.Inventory == nil {
		snap.Inventory = []domain.InventoryRecord{}
	}
	s.writeJSON(w, http.StatusOK, snap.Inventory)
}

// handleInquiries responds to GET /api/inquiries.
func (s *Server) handleInquiries(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap.Inquiries == nil {
		snap.Inquiries = []domain.InquiryRecord{}
	}
	s.writeJSON(w, http.StatusOK, snap.Inquiries)
}

// handleSystemStats responds to GET /api/system/stats with CPU and RAM
// usage. The 100ms CPU sample keeps the endpoint fast for polling clients.
func (s *Server) handleSystemStats(w http.ResponseWriter, r *http.Request) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}
	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	ramPercent := 0.0
	if memStat, err := mem.VirtualMemory(); err == nil {
		ramPercent = memStat.UsedPercent
	} else {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	s.writeJSON(w, http.StatusOK, map[string]float64{
		"cpu_percent": cpuAvg,
		"ram_percent": ramPercent,
	})
}

// handleRunCycle responds to POST /api/cycle/run by triggering one agent
// cycle through the same serialized entry point as the autonomous loop.
func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	summary, err := s.driver.RunCycle(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}
