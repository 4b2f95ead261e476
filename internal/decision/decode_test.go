package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "markdown fenced",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding prose",
			in:   "Here is my analysis:\n{\"a\": 1}\nLet me know if you need more.",
			want: `{"a": 1}`,
		},
		{
			name: "fenced with prose",
			in:   "Sure! ```json\n{\"a\": {\"b\": 2}}\n``` done",
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "no object at all",
			in:   "I could not produce any decisions today.",
			want: "I could not produce any decisions today.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestDecode_FullResponse(t *testing.T) {
	raw := []byte("```json\n" + `{
		"analysis_summary": "Two aged units need markdowns.",
		"price_adjustments": [
			{
				"vin": "1HGBH41JXMN109186",
				"stock_number": "ST-1001",
				"current_price": 20000,
				"recommended_price": 18000,
				"reason": "78 days in stock",
				"confidence": 0.85,
				"urgency": "high"
			}
		],
		"customer_responses": [
			{
				"inquiry_id": "INQ-0042",
				"customer_name": "Dana Smith",
				"response_subject": "Re: your inquiry",
				"response_body": "Hi Dana, the car is still available.",
				"offer_price": 17500,
				"strategy": "close the hot lead"
			}
		],
		"social_media_posts": [
			{
				"platform": "instagram",
				"content": "Fresh arrival on the lot!",
				"vehicle_vin": "1HGBH41JXMN109186",
				"hashtags": ["#cars", "#deal"]
			}
		],
		"urgent_alerts": [
			{
				"priority": "high",
				"category": "inventory",
				"message": "Vehicle over 120 days",
				"recommended_action": "Consider wholesale"
			}
		]
	}` + "\n```")

	ds, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "Two aged units need markdowns.", ds.AnalysisSummary)

	require.Len(t, ds.PriceAdjustments, 1)
	adj := ds.PriceAdjustments[0]
	assert.Equal(t, "1HGBH41JXMN109186", adj.VIN)
	assert.Equal(t, 18000.0, adj.RecommendedPrice)
	assert.Equal(t, 0.85, adj.Confidence)

	require.Len(t, ds.CustomerResponses, 1)
	resp := ds.CustomerResponses[0]
	assert.Equal(t, "INQ-0042", resp.InquiryID)
	require.NotNil(t, resp.OfferPrice)
	assert.Equal(t, 17500.0, *resp.OfferPrice)

	require.Len(t, ds.SocialMediaPosts, 1)
	assert.Equal(t, []string{"#cars", "#deal"}, ds.SocialMediaPosts[0].Hashtags)

	require.Len(t, ds.UrgentAlerts, 1)
	assert.Equal(t, "inventory", ds.UrgentAlerts[0].Category)
}

func TestDecode_StringPrices(t *testing.T) {
	raw := []byte(`{
		"price_adjustments": [
			{"vin": "V1", "current_price": "$20,000", "recommended_price": "18000"}
		]
	}`)

	ds, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, ds.PriceAdjustments, 1)
	assert.Equal(t, 20000.0, ds.PriceAdjustments[0].CurrentPrice)
	assert.Equal(t, 18000.0, ds.PriceAdjustments[0].RecommendedPrice)
}

func TestDecode_NullOfferPrice(t *testing.T) {
	raw := []byte(`{
		"customer_responses": [
			{"inquiry_id": "INQ-1", "offer_price": null}
		]
	}`)

	ds, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, ds.CustomerResponses, 1)
	assert.Nil(t, ds.CustomerResponses[0].OfferPrice)
}

func TestDecode_MalformedItemDegradesToZeroValues(t *testing.T) {
	// recommended_price is an object, vin is a number. The item has to
	// survive as zero values so the executor records it as failed; the
	// sibling item decodes normally.
	raw := []byte(`{
		"price_adjustments": [
			{"vin": 12345, "recommended_price": {"amount": 18000}},
			{"vin": "V2", "recommended_price": 9500}
		]
	}`)

	ds, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, ds.PriceAdjustments, 2)
	assert.Equal(t, "", ds.PriceAdjustments[0].VIN)
	assert.Equal(t, 0.0, ds.PriceAdjustments[0].RecommendedPrice)
	assert.Equal(t, "V2", ds.PriceAdjustments[1].VIN)
	assert.Equal(t, 9500.0, ds.PriceAdjustments[1].RecommendedPrice)
}

func TestDecode_MissingCategories(t *testing.T) {
	ds, err := Decode([]byte(`{"analysis_summary": "quiet day"}`))
	require.NoError(t, err)
	assert.Empty(t, ds.PriceAdjustments)
	assert.Empty(t, ds.CustomerResponses)
	assert.Empty(t, ds.SocialMediaPosts)
	assert.Empty(t, ds.UrgentAlerts)
}

func TestDecode_CategoryWrongType(t *testing.T) {
	// A category that is not a list is treated as empty, not an error.
	ds, err := Decode([]byte(`{"price_adjustments": "none today"}`))
	require.NoError(t, err)
	assert.Empty(t, ds.PriceAdjustments)
}

func TestDecode_NoJSONObject(t *testing.T) {
	_, err := Decode([]byte("I am unable to help with that."))
	assert.Error(t, err)
}
