package decision

import (
	"github.com/rs/zerolog"

	"github.com/lotpilot/lotpilot/internal/domain"
)

// Validator filters a decision set against the authoritative identifier
// sets of the record store. It never mutates its inputs and never fails:
// referential invalidity is resolved by dropping items, with a count-based
// warning. This is the only defense against hallucinated identifiers.
type Validator struct {
	log zerolog.Logger
}

// NewValidator creates a validator.
func NewValidator(log zerolog.Logger) *Validator {
	return &Validator{
		log: log.With().Str("component", "validator").Logger(),
	}
}

// Validate returns a new decision set containing only items whose
// identifiers exist in the supplied sets. Social media posts and urgent
// alerts carry no authoritative identifier and pass through unfiltered.
//
// Guarantee: the output never references a VIN outside validVINs or an
// inquiry id outside validInquiryIDs.
func (v *Validator) Validate(ds *domain.DecisionSet, validVINs, validInquiryIDs map[string]struct{}) *domain.DecisionSet {
	if ds == nil {
		return domain.EmptyDecisionSet()
	}

	out := domain.EmptyDecisionSet()
	out.AnalysisSummary = ds.AnalysisSummary

	for _, adj := range ds.PriceAdjustments {
		if _, ok := validVINs[adj.VIN]; ok {
			out.PriceAdjustments = append(out.PriceAdjustments, adj)
		}
	}
	if dropped := len(ds.PriceAdjustments) - len(out.PriceAdjustments); dropped > 0 {
		v.log.Warn().
			Int("dropped", dropped).
			Int("kept", len(out.PriceAdjustments)).
			Msg("Filtered out price adjustments with invalid VINs")
	}

	for _, resp := range ds.CustomerResponses {
		if _, ok := validInquiryIDs[resp.InquiryID]; ok {
			out.CustomerResponses = append(out.CustomerResponses, resp)
		}
	}
	if dropped := len(ds.CustomerResponses) - len(out.CustomerResponses); dropped > 0 {
		v.log.Warn().
			Int("dropped", dropped).
			Int("kept", len(out.CustomerResponses)).
			Msg("Filtered out customer responses with invalid inquiry IDs")
	}

	out.SocialMediaPosts = append(out.SocialMediaPosts, ds.SocialMediaPosts...)
	out.UrgentAlerts = append(out.UrgentAlerts, ds.UrgentAlerts...)

	return out
}
