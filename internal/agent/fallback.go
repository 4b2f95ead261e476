package agent

import (
	"fmt"

	"github.com/lotpilot/lotpilot/internal/domain"
)

// Fallback caps: how many of each action type the rule-based generator
// proposes when the model is unavailable.
const (
	fallbackMaxAdjustments = 5
	fallbackMaxResponses   = 3
	fallbackMarkdown       = 0.05
)

// Fallback generates conservative rule-based decisions from the snapshot:
// a small markdown on the most aged margin-positive vehicles and canned
// replies to new hot leads. Every identifier comes from the snapshot, so
// fallback decisions always survive validation.
func (s *Source) Fallback(snap domain.Snapshot) *domain.DecisionSet {
	ds := domain.EmptyDecisionSet()
	ds.AnalysisSummary = "Reasoning service unavailable. Conservative rule-based decisions: " +
		"markdowns on aged inventory with margin headroom and replies to new hot leads."

	for _, rec := range agedInventory(snap.Inventory) {
		if len(ds.PriceAdjustments) == fallbackMaxAdjustments {
			break
		}
		newPrice := rec.CurrentPrice * (1 - fallbackMarkdown)
		if rec.Cost <= 0 || newPrice < rec.Cost*(1+s.minMargin) {
			continue
		}
		urgency := "medium"
		if rec.DaysInInventory > 90 {
			urgency = "high"
		}
		ds.PriceAdjustments = append(ds.PriceAdjustments, domain.PriceAdjustment{
			VIN:              rec.VIN,
			StockNumber:      rec.StockNumber,
			CurrentPrice:     rec.CurrentPrice,
			RecommendedPrice: newPrice,
			Reason:           fmt.Sprintf("Aged inventory markdown: %d days in stock", rec.DaysInInventory),
			Confidence:       0.5,
			Urgency:          urgency,
		})
	}

	for _, inq := range newInquiries(snap.Inquiries) {
		if len(ds.CustomerResponses) == fallbackMaxResponses {
			break
		}
		if inq.CustomerType != "hot_lead" {
			continue
		}
		vehicle := findVehicle(snap.Inventory, inq.VIN)
		subject := fmt.Sprintf("Re: your inquiry (%s)", inq.StockNumber)
		body := fmt.Sprintf("Hi %s,\n\nThanks for reaching out about stock #%s. "+
			"The vehicle is still available and we would love to get you behind the wheel. "+
			"When would be a good time for a visit or a call?\n\nBest regards,\n%s",
			inq.CustomerName, inq.StockNumber, s.dealerName)
		if vehicle != nil {
			subject = fmt.Sprintf("Re: your interest in the %d %s %s", vehicle.Year, vehicle.Make, vehicle.Model)
			body = fmt.Sprintf("Hi %s,\n\nThanks for reaching out about the %d %s %s. "+
				"It is still available at $%.0f and we would love to get you behind the wheel. "+
				"When would be a good time for a visit or a call?\n\nBest regards,\n%s",
				inq.CustomerName, vehicle.Year, vehicle.Make, vehicle.Model, vehicle.CurrentPrice, s.dealerName)
		}
		ds.CustomerResponses = append(ds.CustomerResponses, domain.CustomerResponse{
			InquiryID:       inq.InquiryID,
			CustomerName:    inq.CustomerName,
			ResponseSubject: subject,
			ResponseBody:    body,
			Strategy:        "Immediate acknowledgment of hot lead while reasoning service is down",
		})
	}

	ds.UrgentAlerts = append(ds.UrgentAlerts, domain.UrgentAlert{
		Priority:          "high",
		Category:          "system",
		Message:           "Reasoning service unavailable - fallback decisions generated locally",
		RecommendedAction: "Check Bedrock connectivity and credentials",
	})

	return ds
}

func findVehicle(inventory []domain.InventoryRecord, vin string) *domain.InventoryRecord {
	for i := range inventory {
		if inventory[i].VIN == vin {
			return &inventory[i]
		}
	}
	return nil
}
