// Package executor applies validated decision sets against the record
// store. It is the sole writer of record-store mutations and the action
// log, and the only component that constructs ActionResults.
package executor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lotpilot/lotpilot/internal/actionlog"
	"github.com/lotpilot/lotpilot/internal/domain"
	"github.com/lotpilot/lotpilot/internal/store"
)

// Preview lengths for simulated customer responses and social content.
const (
	bodyPreviewLen    = 200
	contentPreviewLen = 100
)

// Executor runs decision items in a fixed category order: price
// adjustments, customer responses, social media posts, urgent alerts.
// Categories touch disjoint identifier spaces and never share state.
type Executor struct {
	store     *store.Store
	email     domain.EmailTransport
	social    domain.SocialPublisher
	actionLog *actionlog.Log
	log       zerolog.Logger
	now       func() time.Time
}

// New creates an executor.
func New(st *store.Store, email domain.EmailTransport, social domain.SocialPublisher, log *actionlog.Log, zl zerolog.Logger) *Executor {
	return &Executor{
		store:     st,
		email:     email,
		social:    social,
		actionLog: log,
		log:       zl.With().Str("service", "executor").Logger(),
		now:       time.Now,
	}
}

// ExecuteAll processes every category of a decision set in mode and returns
// the cycle summary. Per-item failures are recorded, never propagated; the
// returned error reports only action-log persistence problems, with the
// summary still valid.
func (e *Executor) ExecuteAll(ds *domain.DecisionSet, mode domain.ExecutionMode) (*domain.CycleSummary, error) {
	if ds == nil {
		ds = domain.EmptyDecisionSet()
	}

	summary := &domain.CycleSummary{
		Timestamp:       e.now(),
		ActionsByType:   make(map[string][]domain.ActionResult),
		AnalysisSummary: ds.AnalysisSummary,
	}

	categories := []struct {
		key     string
		results []domain.ActionResult
	}{
		{domain.CategoryPriceAdjustments, e.executePriceAdjustments(ds.PriceAdjustments, mode)},
		{domain.CategoryCustomerResponses, e.executeCustomerResponses(ds.CustomerResponses, mode)},
		{domain.CategorySocialMediaPosts, e.executeSocialMediaPosts(ds.SocialMediaPosts, mode)},
		{domain.CategoryUrgentAlerts, e.logUrgentAlerts(ds.UrgentAlerts)},
	}

	for _, cat := range categories {
		summary.ActionsByType[cat.key] = cat.results
		summary.TotalActions += len(cat.results)
		for i := range cat.results {
			if cat.results[i].Succeeded() {
				summary.SuccessfulActions++
			}
		}
	}
	summary.FailedActions = summary.TotalActions - summary.SuccessfulActions

	e.log.Info().
		Str("mode", mode.String()).
		Int("total", summary.TotalActions).
		Int("successful", summary.SuccessfulActions).
		Int("failed", summary.FailedActions).
		Msg("Cycle execution complete")

	if err := e.actionLog.Append(summary); err != nil {
		e.log.Error().Err(err).Msg("Failed to persist action log")
		return summary, err
	}
	return summary, nil
}

// History exposes the action log to the dashboard surface.
func (e *Executor) History(limit int) ([]domain.CycleSummary, error) {
	return e.actionLog.History(limit)
}

// runItem executes one item inside a panic boundary. An unexpected panic
// while processing a single item becomes a failed result; the batch always
// continues.
func (e *Executor) runItem(actionType domain.ActionType, fn func() domain.ActionResult) (res domain.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("action_type", string(actionType)).Interface("panic", r).Msg("Item processing panicked")
			res = domain.ActionResult{
				ID:         uuid.New().String(),
				ActionType: actionType,
				Status:     domain.StatusFailed,
				Error:      fmt.Sprintf("unexpected failure: %v", r),
				Timestamp:  e.now(),
			}
		}
	}()
	return fn()
}

func (e *Executor) executePriceAdjustments(adjustments []domain.PriceAdjustment, mode domain.ExecutionMode) []domain.ActionResult {
	results := make([]domain.ActionResult, 0, len(adjustments))

	for _, adj := range adjustments {
		adj := adj
		results = append(results, e.runItem(domain.ActionPriceAdjustment, func() domain.ActionResult {
			return e.adjustPrice(adj, mode)
		}))
	}
	return results
}

func (e *Executor) adjustPrice(adj domain.PriceAdjustment, mode domain.ExecutionMode) domain.ActionResult {
	result := domain.ActionResult{
		ID:         uuid.New().String(),
		ActionType: domain.ActionPriceAdjustment,
		Timestamp:  e.now(),
		VIN:        adj.VIN,
	}

	if adj.VIN == "" || adj.RecommendedPrice <= 0 {
		e.log.Warn().Str("vin", adj.VIN).Msg("Skipping adjustment - missing VIN or price")
		result.Status = domain.StatusFailed
		result.Error = "Missing VIN or price"
		return result
	}

	vehicle := e.store.FindVehicle(adj.VIN)
	if vehicle == nil {
		e.log.Warn().Str("vin", adj.VIN).Msg("Vehicle not found")
		result.Status = domain.StatusFailed
		result.Error = "Vehicle not found"
		return result
	}

	// A blank price cell in the inventory file loads as 0. Dividing by it
	// would put an Inf in the summary, which JSON cannot encode, losing
	// the whole cycle from the action log.
	oldPrice := vehicle.CurrentPrice
	if oldPrice <= 0 {
		e.log.Warn().Str("vin", adj.VIN).Float64("current_price", oldPrice).Msg("Vehicle has no valid current price")
		result.Status = domain.StatusFailed
		result.Error = "Vehicle has no valid current price"
		return result
	}

	if mode == domain.ModeExecute {
		if err := e.store.SetPrice(adj.VIN, adj.RecommendedPrice, result.Timestamp); err != nil {
			result.Status = domain.StatusFailed
			result.Error = err.Error()
			return result
		}
		if err := e.store.SaveInventory(); err != nil {
			result.Status = domain.StatusFailed
			result.Error = err.Error()
			return result
		}
	}

	reason := adj.Reason
	if reason == "" {
		reason = "AI recommendation"
	}

	result.Status = domain.StatusSuccess
	result.ExecutionType = mode.ExecutionType()
	result.StockNumber = adj.StockNumber
	result.OldPrice = oldPrice
	result.NewPrice = adj.RecommendedPrice
	result.AdjustmentAmount = adj.RecommendedPrice - oldPrice
	result.AdjustmentPercent = (adj.RecommendedPrice - oldPrice) / oldPrice * 100
	result.Reason = reason
	result.Confidence = adj.Confidence
	result.Urgency = adj.Urgency

	e.log.Info().
		Str("vin", adj.VIN).
		Str("stock_number", adj.StockNumber).
		Float64("old_price", oldPrice).
		Float64("new_price", adj.RecommendedPrice).
		Str("execution_type", string(result.ExecutionType)).
		Msg("Price adjustment")

	return result
}

func (e *Executor) executeCustomerResponses(responses []domain.CustomerResponse, mode domain.ExecutionMode) []domain.ActionResult {
	results := make([]domain.ActionResult, 0, len(responses))

	for _, resp := range responses {
		resp := resp
		results = append(results, e.runItem(domain.ActionCustomerResponse, func() domain.ActionResult {
			return e.respondToCustomer(resp, mode)
		}))
	}
	return results
}

func (e *Executor) respondToCustomer(resp domain.CustomerResponse, mode domain.ExecutionMode) domain.ActionResult {
	result := domain.ActionResult{
		ID:         uuid.New().String(),
		ActionType: domain.ActionCustomerResponse,
		Timestamp:  e.now(),
		InquiryID:  resp.InquiryID,
	}

	inquiry := e.store.FindInquiry(resp.InquiryID)
	if inquiry == nil {
		e.log.Warn().Str("inquiry_id", resp.InquiryID).Msg("Inquiry not found")
		result.Status = domain.StatusFailed
		result.Error = "Inquiry not found"
		return result
	}

	if mode == domain.ModeExecute {
		receipt, err := e.email.Send(inquiry.CustomerEmail, resp.ResponseSubject, resp.ResponseBody)
		if err != nil {
			result.Status = domain.StatusFailed
			result.Error = err.Error()
			return result
		}
		result.EmailReceipt = receipt

		if err := e.store.MarkResponded(resp.InquiryID); err != nil {
			result.Status = domain.StatusFailed
			result.Error = err.Error()
			return result
		}
		if err := e.store.SaveInquiries(); err != nil {
			result.Status = domain.StatusFailed
			result.Error = err.Error()
			return result
		}
	} else {
		result.BodyPreview = truncate(resp.ResponseBody, bodyPreviewLen)
	}

	result.Status = domain.StatusSuccess
	result.ExecutionType = mode.ExecutionType()
	result.CustomerName = inquiry.CustomerName
	result.CustomerEmail = inquiry.CustomerEmail
	result.Subject = resp.ResponseSubject
	result.OfferPrice = resp.OfferPrice
	result.Strategy = resp.Strategy

	e.log.Info().
		Str("inquiry_id", resp.InquiryID).
		Str("customer", inquiry.CustomerName).
		Str("execution_type", string(result.ExecutionType)).
		Msg("Customer response")

	return result
}

func (e *Executor) executeSocialMediaPosts(posts []domain.SocialMediaPost, mode domain.ExecutionMode) []domain.ActionResult {
	results := make([]domain.ActionResult, 0, len(posts))

	for _, post := range posts {
		post := post
		results = append(results, e.runItem(domain.ActionSocialMediaPost, func() domain.ActionResult {
			return e.publishPost(post, mode)
		}))
	}
	return results
}

func (e *Executor) publishPost(post domain.SocialMediaPost, mode domain.ExecutionMode) domain.ActionResult {
	result := domain.ActionResult{
		ID:         uuid.New().String(),
		ActionType: domain.ActionSocialMediaPost,
		Timestamp:  e.now(),
		Platform:   post.Platform,
	}

	if mode == domain.ModeExecute {
		receipt, err := e.social.Publish(post.Platform, post.Content, post.VehicleVIN)
		if err != nil {
			result.Status = domain.StatusFailed
			result.Error = err.Error()
			return result
		}
		result.PostReceipt = receipt
	}

	result.Status = domain.StatusSuccess
	result.ExecutionType = mode.ExecutionType()
	result.ContentPreview = truncate(post.Content, contentPreviewLen)
	result.VehicleVIN = post.VehicleVIN
	result.Hashtags = post.Hashtags

	e.log.Info().
		Str("platform", post.Platform).
		Str("execution_type", string(result.ExecutionType)).
		Msg("Social media post")

	return result
}

// logUrgentAlerts records alerts for human attention. Alerts are never
// executed or simulated; every item yields exactly one logged result.
func (e *Executor) logUrgentAlerts(alerts []domain.UrgentAlert) []domain.ActionResult {
	results := make([]domain.ActionResult, 0, len(alerts))

	for _, alert := range alerts {
		result := domain.ActionResult{
			ID:                uuid.New().String(),
			ActionType:        domain.ActionUrgentAlert,
			Status:            domain.StatusLogged,
			Timestamp:         e.now(),
			Priority:          alert.Priority,
			Category:          alert.Category,
			Message:           alert.Message,
			RecommendedAction: alert.RecommendedAction,
		}
		results = append(results, result)

		e.log.Warn().
			Str("priority", alert.Priority).
			Str("category", alert.Category).
			Str("message", alert.Message).
			Msg("Urgent alert")
	}
	return results
}

// truncate returns the first n runes of s, ellipsis-suffixed only when
// content was actually cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
