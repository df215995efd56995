package calculator

import (
	"fmt"
	"time"

	"crm-ledger/internal/models"
)

// SalesSummary represents sales totals for a period
type SalesSummary struct {
	Period      string    `json:"period"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"` // exclusive
	SalesCount  int       `json:"sales_count"`
	TotalAmount float64   `json:"total_amount"`
	TotalGST    float64   `json:"total_gst"`
	Unparsed    int       `json:"unparsed"` // sales whose date could not be read
}

// MonthRange returns the [start, end) range of a calendar month
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// FiscalQuarterRange returns the [start, end) range of a fiscal quarter.
// Q1 is April to June, Q2 July to September, Q3 October to December and Q4
// January to March, all within the given calendar year.
func FiscalQuarterRange(quarter, year int, loc *time.Location) (time.Time, time.Time, error) {
	var startMonth time.Month
	switch quarter {
	case 1:
		startMonth = time.April
	case 2:
		startMonth = time.July
	case 3:
		startMonth = time.October
	case 4:
		startMonth = time.January
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("quarter must be between 1 and 4, got %d", quarter)
	}
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 3, 0), nil
}

// SummarizeSales totals the sales dated within [start, end)
func SummarizeSales(period string, sales []*models.Sale, start, end time.Time) SalesSummary {
	summary := SalesSummary{
		Period:    period,
		StartDate: start,
		EndDate:   end,
	}

	for _, s := range sales {
		date, err := models.ParseTimestamp(s.SaleDate, start.Location())
		if err != nil {
			summary.Unparsed++
			continue
		}
		if date.Before(start) || !date.Before(end) {
			continue
		}
		summary.SalesCount++
		summary.TotalAmount += s.TotalAmount
		summary.TotalGST += s.TotalGST
	}

	return summary
}
