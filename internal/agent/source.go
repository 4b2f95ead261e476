package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lotpilot/lotpilot/internal/decision"
	"github.com/lotpilot/lotpilot/internal/domain"
)

const (
	decisionMaxTokens   = 4000
	decisionTemperature = 0.7
)

// Source implements domain.DecisionSource on top of the Bedrock client.
// With a nil client it operates in fallback-only mode: every cycle gets
// locally generated rule-based decisions.
type Source struct {
	client        *Client
	dealerName    string
	minMargin     float64
	maxAdjustment float64
	log           zerolog.Logger
}

// NewSource creates a decision source. client may be nil.
func NewSource(client *Client, dealerName string, minMargin, maxAdjustment float64, log zerolog.Logger) *Source {
	return &Source{
		client:        client,
		dealerName:    dealerName,
		minMargin:     minMargin,
		maxAdjustment: maxAdjustment,
		log:           log.With().Str("service", "decision_source").Logger(),
	}
}

// Propose asks the model for a decision set. A failed invocation or an
// unparseable response yields fallback decisions, never an error: upstream
// garbage must not crash a cycle.
func (s *Source) Propose(ctx context.Context, snap domain.Snapshot) (*domain.DecisionSet, error) {
	if s.client == nil {
		s.log.Debug().Msg("No model configured, generating fallback decisions")
		return s.Fallback(snap), nil
	}

	prompt := s.buildPrompt(buildContext(snap))

	text, err := s.client.Invoke(ctx, prompt, decisionMaxTokens, decisionTemperature)
	if err != nil {
		s.log.Warn().Err(err).Msg("Model invocation failed, using fallback decisions")
		return s.Fallback(snap), nil
	}

	ds, err := decision.Decode([]byte(text))
	if err != nil {
		s.log.Warn().Err(err).Msg("Model output unparseable, using fallback decisions")
		return s.Fallback(snap), nil
	}

	s.log.Info().
		Int("price_adjustments", len(ds.PriceAdjustments)).
		Int("customer_responses", len(ds.CustomerResponses)).
		Int("social_media_posts", len(ds.SocialMediaPosts)).
		Int("urgent_alerts", len(ds.UrgentAlerts)).
		Msg("Decisions received from model")

	return ds, nil
}

func (s *Source) buildPrompt(context string) string {
	return fmt.Sprintf(`You are an autonomous AI agent managing a car dealership called %s.

%s

YOUR TASK:
Analyze the aged vehicles and customer inquiries above and make specific recommendations.

CRITICAL RULES:
1. You MUST use EXACT VINs and stock numbers from the data provided above
2. You MUST use EXACT inquiry_ids from the customer inquiries above
3. Do NOT invent or generate fake IDs
4. Only recommend price changes that maintain minimum %.0f%% profit margin
5. Maximum price change: ±%.0f%%

DECISION FRAMEWORK:
- Vehicles > 60 days: Recommend 5-10%% price reduction (if margin allows)
- Hot leads: Draft immediate response
- Price shoppers: Provide value justification

Respond with ONLY this JSON structure (no markdown, no explanations):

{
"analysis_summary": "2-3 sentence summary of current situation",
"price_adjustments": [
  {
  "vin": "EXACT VIN from above data",
  "stock_number": "EXACT stock_number from above",
  "current_price": current price as number,
  "recommended_price": new price as number,
  "reason": "brief explanation",
  "confidence": 0.85,
  "urgency": "high"
  }
],
"customer_responses": [
  {
  "inquiry_id": "EXACT inquiry_id from above",
  "customer_name": "name from data",
  "response_subject": "subject line",
  "response_body": "email content",
  "offer_price": null,
  "strategy": "approach explanation"
  }
],
"social_media_posts": [],
"urgent_alerts": []
}

Generate 3-5 price adjustments for the most aged vehicles and 2-3 customer responses.
Remember: Use ONLY the exact VINs and IDs from the data above.`,
		s.dealerName, context, s.minMargin*100, s.maxAdjustment*100)
}
