// Package decision turns untrusted reasoning-service output into validated,
// executable decision sets. The producer is a generative model, so
// wrong-typed fields, markdown wrapping and missing categories are expected
// inputs, not errors.
package decision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lotpilot/lotpilot/internal/domain"
)

// flexFloat accepts JSON numbers, numeric strings ("18000", "$18,000") and
// null. Anything else decodes to zero instead of failing the item.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = flexFloat(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexFloat(v)
	}
	return nil
}

// Raw item shapes, decoded one item at a time so a single malformed item
// cannot poison the rest of its category.
type rawPriceAdjustment struct {
	VIN              string    `json:"vin"`
	StockNumber      string    `json:"stock_number"`
	CurrentPrice     flexFloat `json:"current_price"`
	RecommendedPrice flexFloat `json:"recommended_price"`
	Reason           string    `json:"reason"`
	Confidence       flexFloat `json:"confidence"`
	Urgency          string    `json:"urgency"`
}

type rawCustomerResponse struct {
	InquiryID       string     `json:"inquiry_id"`
	CustomerName    string     `json:"customer_name"`
	ResponseSubject string     `json:"response_subject"`
	ResponseBody    string     `json:"response_body"`
	OfferPrice      *flexFloat `json:"offer_price"`
	Strategy        string     `json:"strategy"`
}

type rawSocialMediaPost struct {
	Platform   string   `json:"platform"`
	Content    string   `json:"content"`
	VehicleVIN string   `json:"vehicle_vin"`
	Hashtags   []string `json:"hashtags"`
}

type rawUrgentAlert struct {
	Priority          string `json:"priority"`
	Category          string `json:"category"`
	Message           string `json:"message"`
	RecommendedAction string `json:"recommended_action"`
}

// ExtractJSON strips markdown code fences and any surrounding prose,
// returning the outermost JSON object in text.
func ExtractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

// Decode parses a raw reasoning-service response into a DecisionSet.
// It returns an error only when no JSON object can be recovered at all;
// partially malformed content degrades to empty categories or zero-valued
// items (which the executor then records as failed).
func Decode(raw []byte) (*domain.DecisionSet, error) {
	text := ExtractJSON(string(raw))

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, fmt.Errorf("decision output is not a JSON object: %w", err)
	}

	ds := domain.EmptyDecisionSet()

	if msg, ok := top["analysis_summary"]; ok {
		var summary string
		if err := json.Unmarshal(msg, &summary); err == nil {
			ds.AnalysisSummary = summary
		}
	}

	for _, item := range items(top, "price_adjustments") {
		var raw rawPriceAdjustment
		_ = json.Unmarshal(item, &raw)
		ds.PriceAdjustments = append(ds.PriceAdjustments, domain.PriceAdjustment{
			VIN:              raw.VIN,
			StockNumber:      raw.StockNumber,
			CurrentPrice:     float64(raw.CurrentPrice),
			RecommendedPrice: float64(raw.RecommendedPrice),
			Reason:           raw.Reason,
			Confidence:       float64(raw.Confidence),
			Urgency:          raw.Urgency,
		})
	}

	for _, item := range items(top, "customer_responses") {
		var raw rawCustomerResponse
		_ = json.Unmarshal(item, &raw)
		resp := domain.CustomerResponse{
			InquiryID:       raw.InquiryID,
			CustomerName:    raw.CustomerName,
			ResponseSubject: raw.ResponseSubject,
			ResponseBody:    raw.ResponseBody,
			Strategy:        raw.Strategy,
		}
		if raw.OfferPrice != nil {
			offer := float64(*raw.OfferPrice)
			resp.OfferPrice = &offer
		}
		ds.CustomerResponses = append(ds.CustomerResponses, resp)
	}

	for _, item := range items(top, "social_media_posts") {
		var raw rawSocialMediaPost
		_ = json.Unmarshal(item, &raw)
		ds.SocialMediaPosts = append(ds.SocialMediaPosts, domain.SocialMediaPost{
			Platform:   raw.Platform,
			Content:    raw.Content,
			VehicleVIN: raw.VehicleVIN,
			Hashtags:   raw.Hashtags,
		})
	}

	for _, item := range items(top, "urgent_alerts") {
		var raw rawUrgentAlert
		_ = json.Unmarshal(item, &raw)
		ds.UrgentAlerts = append(ds.UrgentAlerts, domain.UrgentAlert{
			Priority:          raw.Priority,
			Category:          raw.Category,
			Message:           raw.Message,
			RecommendedAction: raw.RecommendedAction,
		})
	}

	return ds, nil
}

// items returns the raw elements of a category list. A missing key or a
// non-list value yields an empty category, not an error.
func items(top map[string]json.RawMessage, key string) []json.RawMessage {
	msg, ok := top[key]
	if !ok {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(msg, &list); err != nil {
		return nil
	}
	return list
}
