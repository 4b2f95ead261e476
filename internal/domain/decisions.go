package domain

// DecisionSet is the structured batch of proposed actions produced by the
// reasoning service for one cycle. It is ephemeral: consumed once, never
// persisted. The producer is untrusted, so every identifier in here must be
// checked against the record store before execution.
type DecisionSet struct {
	AnalysisSummary   string             `json:"analysis_summary,omitempty"`
	PriceAdjustments  []PriceAdjustment  `json:"price_adjustments"`
	CustomerResponses []CustomerResponse `json:"customer_responses"`
	SocialMediaPosts  []SocialMediaPost  `json:"social_media_posts"`
	UrgentAlerts      []UrgentAlert      `json:"urgent_alerts"`
}

// PriceAdjustment proposes a new price for a vehicle identified by VIN.
type PriceAdjustment struct {
	VIN              string  `json:"vin"`
	StockNumber      string  `json:"stock_number"`
	CurrentPrice     float64 `json:"current_price"`
	RecommendedPrice float64 `json:"recommended_price"`
	Reason           string  `json:"reason"`
	Confidence       float64 `json:"confidence"`
	Urgency          string  `json:"urgency"`
}

// CustomerResponse proposes an email reply to an inquiry.
type CustomerResponse struct {
	InquiryID       string   `json:"inquiry_id"`
	CustomerName    string   `json:"customer_name"`
	ResponseSubject string   `json:"response_subject"`
	ResponseBody    string   `json:"response_body"`
	OfferPrice      *float64 `json:"offer_price"`
	Strategy        string   `json:"strategy"`
}

// SocialMediaPost proposes a post for a platform. Posts carry no
// authoritative identifier so they are never filtered by the validator.
type SocialMediaPost struct {
	Platform   string   `json:"platform"`
	Content    string   `json:"content"`
	VehicleVIN string   `json:"vehicle_vin"`
	Hashtags   []string `json:"hashtags"`
}

// UrgentAlert flags a situation for human attention. Alerts are pure
// logging: they are never executed and have no failure path.
type UrgentAlert struct {
	Priority          string `json:"priority"`
	Category          string `json:"category"`
	Message           string `json:"message"`
	RecommendedAction string `json:"recommended_action"`
}

// EmptyDecisionSet returns a decision set with no items, used as the
// fallback when upstream output is missing or unparseable.
func EmptyDecisionSet() *DecisionSet {
	return &DecisionSet{
		PriceAdjustments:  []PriceAdjustment{},
		CustomerResponses: []CustomerResponse{},
		SocialMediaPosts:  []SocialMediaPost{},
		UrgentAlerts:      []UrgentAlert{},
	}
}

// TotalItems counts every proposed action across all four categories.
func (d *DecisionSet) TotalItems() int {
	if d == nil {
		return 0
	}
	return len(d.PriceAdjustments) + len(d.CustomerResponses) +
		len(d.SocialMediaPosts) + len(d.UrgentAlerts)
}
