package domain

import "time"

// ActionType tags an ActionResult with the category it came from.
type ActionType string

const (
	ActionPriceAdjustment  ActionType = "price_adjustment"
	ActionCustomerResponse ActionType = "customer_response"
	ActionSocialMediaPost  ActionType = "social_media_post"
	ActionUrgentAlert      ActionType = "urgent_alert"
)

// ActionStatus is the per-item outcome. Urgent alerts use StatusLogged;
// everything else resolves to success or failed.
type ActionStatus string

const (
	StatusSuccess ActionStatus = "success"
	StatusFailed  ActionStatus = "failed"
	StatusLogged  ActionStatus = "logged"
)

// ExecutionType records whether an item's side effects actually ran.
type ExecutionType string

const (
	ExecutionSimulated ExecutionType = "SIMULATED"
	ExecutionExecuted  ExecutionType = "EXECUTED"
)

// ExecutionMode selects between dry-run and live execution. Behavior of the
// executor is a pure function of (decision set, store, mode).
type ExecutionMode int

const (
	ModeSimulate ExecutionMode = iota
	ModeExecute
)

// ExecutionType maps the mode to the tag recorded on results.
func (m ExecutionMode) ExecutionType() ExecutionType {
	if m == ModeExecute {
		return ExecutionExecuted
	}
	return ExecutionSimulated
}

func (m ExecutionMode) String() string {
	if m == ModeExecute {
		return "execute"
	}
	return "simulate"
}

// ActionResult is the immutable record of one processed decision item.
// Only the executor constructs these. Payload fields are populated per
// action type; unused fields are omitted from the serialized form.
type ActionResult struct {
	ID            string        `json:"id"`
	ActionType    ActionType    `json:"action_type"`
	Status        ActionStatus  `json:"status"`
	ExecutionType ExecutionType `json:"execution_type,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	Error         string        `json:"error,omitempty"`

	// Price adjustment payload
	VIN               string  `json:"vin,omitempty"`
	StockNumber       string  `json:"stock_number,omitempty"`
	OldPrice          float64 `json:"old_price,omitempty"`
	NewPrice          float64 `json:"new_price,omitempty"`
	AdjustmentAmount  float64 `json:"adjustment_amount,omitempty"`
	AdjustmentPercent float64 `json:"adjustment_percent,omitempty"`
	Reason            string  `json:"reason,omitempty"`
	Confidence        float64 `json:"confidence,omitempty"`
	Urgency           string  `json:"urgency,omitempty"`

	// Customer response payload
	InquiryID     string        `json:"inquiry_id,omitempty"`
	CustomerName  string        `json:"customer_name,omitempty"`
	CustomerEmail string        `json:"customer_email,omitempty"`
	Subject       string        `json:"subject,omitempty"`
	OfferPrice    *float64      `json:"offer_price,omitempty"`
	Strategy      string        `json:"strategy,omitempty"`
	BodyPreview   string        `json:"body_preview,omitempty"`
	EmailReceipt  *EmailReceipt `json:"email_receipt,omitempty"`

	// Social media payload
	Platform       string       `json:"platform,omitempty"`
	ContentPreview string       `json:"content_preview,omitempty"`
	VehicleVIN     string       `json:"vehicle_vin,omitempty"`
	Hashtags       []string     `json:"hashtags,omitempty"`
	PostReceipt    *PostReceipt `json:"post_receipt,omitempty"`

	// Urgent alert payload
	Priority          string `json:"priority,omitempty"`
	Category          string `json:"category,omitempty"`
	Message           string `json:"message,omitempty"`
	RecommendedAction string `json:"recommended_action,omitempty"`
}

// Succeeded reports whether this item counts toward successful_actions.
// Logged alerts count as successful: there is no failure path for them.
func (r *ActionResult) Succeeded() bool {
	return r.Status == StatusSuccess || r.Status == StatusLogged
}

// CycleSummary aggregates the ActionResults of one execution cycle.
// Summaries are appended to the bounded action log.
type CycleSummary struct {
	Timestamp         time.Time                 `json:"timestamp"`
	TotalActions      int                       `json:"total_actions"`
	SuccessfulActions int                       `json:"successful_actions"`
	FailedActions     int                       `json:"failed_actions"`
	ActionsByType     map[string][]ActionResult `json:"actions_by_type"`
	AnalysisSummary   string                    `json:"analysis_summary,omitempty"`
}

// Category keys used in CycleSummary.ActionsByType, in processing order.
const (
	CategoryPriceAdjustments  = "price_adjustments"
	CategoryCustomerResponses = "customer_responses"
	CategorySocialMediaPosts  = "social_media_posts"
	CategoryUrgentAlerts      = "urgent_alerts"
)
