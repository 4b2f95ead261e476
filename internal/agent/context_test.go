package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotpilot/lotpilot/internal/domain"
)

func TestCompetitorStats(t *testing.T) {
	listings := []domain.CompetitorListing{
		{Make: "Honda", Model: "Accord", Price: 19000},
		{Make: "Honda", Model: "Accord", Price: 21000},
		{Make: "Honda", Model: "Civic", Price: 17000},
		{Make: "Toyota", Model: "Camry", Price: 24000},
	}

	stats := competitorStats(listings)
	require.Len(t, stats, 3)

	// Sorted by make then model.
	assert.Equal(t, "Accord", stats[0].Model)
	assert.Equal(t, 20000.0, stats[0].MeanPrice)
	assert.Equal(t, 19000.0, stats[0].MinPrice)
	assert.Equal(t, 21000.0, stats[0].MaxPrice)
	assert.Equal(t, 2, stats[0].Listings)

	assert.Equal(t, "Civic", stats[1].Model)
	assert.Equal(t, 1, stats[1].Listings)

	assert.Equal(t, "Toyota", stats[2].Make)
}

func TestCompetitorStats_Empty(t *testing.T) {
	assert.Empty(t, competitorStats(nil))
}

func TestAgedInventory(t *testing.T) {
	inventory := []domain.InventoryRecord{
		{VIN: "FRESH", DaysInInventory: 10},
		{VIN: "OLD", DaysInInventory: 75},
		{VIN: "OLDEST", DaysInInventory: 120},
		{VIN: "BOUNDARY", DaysInInventory: 60},
	}

	aged := agedInventory(inventory)
	require.Len(t, aged, 2)
	assert.Equal(t, "OLDEST", aged[0].VIN)
	assert.Equal(t, "OLD", aged[1].VIN)
}

func TestNewInquiries(t *testing.T) {
	inquiries := []domain.InquiryRecord{
		{InquiryID: "I1", Status: domain.InquiryStatusNew},
		{InquiryID: "I2", Status: domain.InquiryStatusResponded},
		{InquiryID: "I3", Status: domain.InquiryStatusNew},
	}

	fresh := newInquiries(inquiries)
	require.Len(t, fresh, 2)
	assert.Equal(t, "I1", fresh[0].InquiryID)
	assert.Equal(t, "I3", fresh[1].InquiryID)
}

func TestBuildContext_CarriesExactIdentifiers(t *testing.T) {
	snap := domain.Snapshot{
		Inventory: []domain.InventoryRecord{
			{VIN: "1HGBH41JXMN109186", StockNumber: "ST-1001", Make: "Honda", Model: "Accord", Year: 2021, CurrentPrice: 20000, Cost: 16000, DaysInInventory: 78},
			{VIN: "FRESH1", StockNumber: "ST-1002", DaysInInventory: 5, CurrentPrice: 31000},
		},
		Inquiries: []domain.InquiryRecord{
			{InquiryID: "INQ-0042", CustomerName: "Dana Smith", Status: domain.InquiryStatusNew, CustomerType: "hot_lead"},
		},
		Competitors: []domain.CompetitorListing{
			{Make: "Honda", Model: "Accord", Price: 19500},
		},
	}

	ctx := buildContext(snap)

	assert.Contains(t, ctx, "1HGBH41JXMN109186")
	assert.Contains(t, ctx, "ST-1001")
	assert.Contains(t, ctx, "INQ-0042")
	assert.Contains(t, ctx, "Total vehicles: 2")
	assert.Contains(t, ctx, "EXACT VINs")

	// A fresh vehicle is not part of the aged section.
	agedSection := ctx[strings.Index(ctx, "TOP AGED VEHICLES"):strings.Index(ctx, "CUSTOMER INQUIRIES")]
	assert.NotContains(t, agedSection, "FRESH1")
}

func TestBuildContext_LimitsRecords(t *testing.T) {
	snap := domain.Snapshot{}
	for i := 0; i < 25; i++ {
		snap.Inventory = append(snap.Inventory, domain.InventoryRecord{
			VIN:             strings.Repeat("A", 10) + string(rune('a'+i)),
			DaysInInventory: 61 + i,
		})
	}

	ctx := buildContext(snap)
	// 25 aged vehicles but only the context limit make it into the prompt.
	assert.Contains(t, ctx, "Aged inventory (60+ days): 25")
	count := strings.Count(ctx, `"vin"`)
	assert.Equal(t, contextRecordLimit, count)
}
