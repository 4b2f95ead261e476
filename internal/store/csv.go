package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lotpilot/lotpilot/internal/domain"
)

// Column order for the files this store rewrites. Reads map columns by
// header name, so external files may order (or add) columns freely.
var inventoryColumns = []string{
	"vin", "stock_number", "make", "model", "year", "trim", "mileage",
	"color", "condition", "cost", "current_price", "msrp",
	"days_in_inventory", "last_price_change", "view_count", "inquiry_count",
}

var inquiryColumns = []string{
	"inquiry_id", "vin", "stock_number", "customer_name", "customer_email",
	"customer_phone", "customer_type", "message", "timestamp", "status",
	"budget_max", "financing_needed",
}

// row is one CSV record with header-based field access.
type row struct {
	index  map[string]int
	fields []string
	line   int
}

func (r row) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r row) float(col string) (float64, error) {
	raw := r.str(col)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("row %d: column %q: %w", r.line, col, err)
	}
	return v, nil
}

func (r row) int(col string) (int, error) {
	raw := r.str(col)
	if raw == "" {
		return 0, nil
	}
	// Some producers emit integers as floats ("42.0").
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("row %d: column %q: %w", r.line, col, err)
	}
	return int(v), nil
}

// timestamp parses leniently: malformed dates become the zero time rather
// than failing the load, since date columns are informational.
func (r row) timestamp(col string) time.Time {
	raw := r.str(col)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r row) boolean(col string) bool {
	raw := r.str(col)
	return strings.EqualFold(raw, "true") || raw == "1"
}

// readRows reads a whole CSV file and returns header-indexed rows.
// A missing file surfaces as the raw os.Open error so callers can
// distinguish absent optional tables.
func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}

	rows := make([]row, 0, len(records)-1)
	for i, fields := range records[1:] {
		rows = append(rows, row{index: index, fields: fields, line: i + 2})
	}
	return rows, nil
}

func readInventory(path string) ([]domain.InventoryRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]domain.InventoryRecord, 0, len(rows))
	for _, r := range rows {
		rec := domain.InventoryRecord{
			VIN:             r.str("vin"),
			StockNumber:     r.str("stock_number"),
			Make:            r.str("make"),
			Model:           r.str("model"),
			Trim:            r.str("trim"),
			Color:           r.str("color"),
			Condition:       r.str("condition"),
			LastPriceChange: r.timestamp("last_price_change"),
		}
		if rec.Year, err = r.int("year"); err != nil {
			return nil, err
		}
		if rec.Mileage, err = r.int("mileage"); err != nil {
			return nil, err
		}
		if rec.Cost, err = r.float("cost"); err != nil {
			return nil, err
		}
		if rec.CurrentPrice, err = r.float("current_price"); err != nil {
			return nil, err
		}
		if rec.MSRP, err = r.float("msrp"); err != nil {
			return nil, err
		}
		if rec.DaysInInventory, err = r.int("days_in_inventory"); err != nil {
			return nil, err
		}
		if rec.ViewCount, err = r.int("view_count"); err != nil {
			return nil, err
		}
		if rec.InquiryCount, err = r.int("inquiry_count"); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func readInquiries(path string) ([]domain.InquiryRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]domain.InquiryRecord, 0, len(rows))
	for _, r := range rows {
		rec := domain.InquiryRecord{
			InquiryID:       r.str("inquiry_id"),
			VIN:             r.str("vin"),
			StockNumber:     r.str("stock_number"),
			CustomerName:    r.str("customer_name"),
			CustomerEmail:   r.str("customer_email"),
			CustomerPhone:   r.str("customer_phone"),
			CustomerType:    r.str("customer_type"),
			Message:         r.str("message"),
			Timestamp:       r.timestamp("timestamp"),
			Status:          r.str("status"),
			FinancingNeeded: r.boolean("financing_needed"),
		}
		if rec.BudgetMax, err = r.float("budget_max"); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func readSales(path string) ([]domain.SaleRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]domain.SaleRecord, 0, len(rows))
	for _, r := range rows {
		rec := domain.SaleRecord{
			SaleID:   r.str("sale_id"),
			SaleDate: r.timestamp("sale_date"),
			Make:     r.str("make"),
		}
		if rec.Year, err = r.int("year"); err != nil {
			return nil, err
		}
		if rec.OriginalPrice, err = r.float("original_price"); err != nil {
			return nil, err
		}
		if rec.SoldPrice, err = r.float("sold_price"); err != nil {
			return nil, err
		}
		if rec.Discount, err = r.float("discount"); err != nil {
			return nil, err
		}
		if rec.DaysToSell, err = r.int("days_to_sell"); err != nil {
			return nil, err
		}
		if rec.GrossProfit, err = r.float("gross_profit"); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func readCompetitors(path string) ([]domain.CompetitorListing, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CompetitorListing, 0, len(rows))
	for _, r := range rows {
		rec := domain.CompetitorListing{
			Make:       r.str("make"),
			Model:      r.str("model"),
			DealerName: r.str("dealer_name"),
		}
		if rec.Year, err = r.int("year"); err != nil {
			return nil, err
		}
		if rec.Mileage, err = r.int("mileage"); err != nil {
			return nil, err
		}
		if rec.Price, err = r.float("price"); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeInventory(path string, records []domain.InventoryRecord) error {
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			r.VIN,
			r.StockNumber,
			r.Make,
			r.Model,
			strconv.Itoa(r.Year),
			r.Trim,
			strconv.Itoa(r.Mileage),
			r.Color,
			r.Condition,
			formatMoney(r.Cost),
			formatMoney(r.CurrentPrice),
			formatMoney(r.MSRP),
			strconv.Itoa(r.DaysInInventory),
			formatTime(r.LastPriceChange),
			strconv.Itoa(r.ViewCount),
			strconv.Itoa(r.InquiryCount),
		})
	}
	return writeCSV(path, inventoryColumns, rows)
}

func writeInquiries(path string, records []domain.InquiryRecord) error {
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			r.InquiryID,
			r.VIN,
			r.StockNumber,
			r.CustomerName,
			r.CustomerEmail,
			r.CustomerPhone,
			r.CustomerType,
			r.Message,
			formatTime(r.Timestamp),
			r.Status,
			formatMoney(r.BudgetMax),
			strconv.FormatBool(r.FinancingNeeded),
		})
	}
	return writeCSV(path, inquiryColumns, rows)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
