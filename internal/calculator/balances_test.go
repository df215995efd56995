package calculator

import (
	"testing"
	"time"

	"crm-ledger/internal/models"
)

func TestComputeBalances(t *testing.T) {
	customers := []*models.Customer{
		{ID: 1, Name: "Asha"},
		{ID: 2, Name: "Bala"},
		{ID: 3, Name: "Chitra"},
	}
	sales := []*models.Sale{
		{ID: 1, CustomerID: 1, TotalAmount: 500},
		{ID: 2, CustomerID: 2, TotalAmount: 100},
		{ID: 3, CustomerID: 99, TotalAmount: 70}, // deleted customer
	}
	saleID := int64(2)
	payments := []*models.Payment{
		{ID: 1, CustomerID: 1, Amount: 300},
		{ID: 2, CustomerID: 2, SaleID: &saleID, Amount: 150},
	}

	balances := ComputeBalances(customers, sales, payments)
	if len(balances) != 3 {
		t.Fatalf("Expected 3 balances, got %d", len(balances))
	}

	tests := []struct {
		name     string
		idx      int
		sales    float64
		payments float64
		net      float64
		status   BalanceStatus
	}{
		{"receivable", 0, 500, 300, 200, BalanceReceivable},
		{"overpaid", 1, 100, 150, -50, BalanceOverpaid},
		{"no activity", 2, 0, 0, 0, BalanceClear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := balances[tt.idx]
			if b.Customer.ID != customers[tt.idx].ID {
				t.Errorf("Customer.ID = %d, want %d", b.Customer.ID, customers[tt.idx].ID)
			}
			if b.TotalSales != tt.sales {
				t.Errorf("TotalSales = %v, want %v", b.TotalSales, tt.sales)
			}
			if b.TotalPayments != tt.payments {
				t.Errorf("TotalPayments = %v, want %v", b.TotalPayments, tt.payments)
			}
			if b.Net != tt.net {
				t.Errorf("Net = %v, want %v", b.Net, tt.net)
			}
			if b.Status() != tt.status {
				t.Errorf("Status() = %v, want %v", b.Status(), tt.status)
			}
		})
	}

	if got := Receivables(sales, payments); got != 220 {
		t.Errorf("Receivables = %v, want 220", got)
	}
}

func TestComputeBalancesEmpty(t *testing.T) {
	if got := ComputeBalances(nil, nil, nil); len(got) != 0 {
		t.Errorf("Expected no balances, got %d", len(got))
	}
}

func TestFiscalQuarterRange(t *testing.T) {
	tests := []struct {
		quarter   int
		wantStart time.Month
		wantEnd   time.Month
		endYear   int
	}{
		{1, time.April, time.July, 2024},
		{2, time.July, time.October, 2024},
		{3, time.October, time.January, 2025},
		{4, time.January, time.April, 2024},
	}

	for _, tt := range tests {
		start, end, err := FiscalQuarterRange(tt.quarter, 2024, time.UTC)
		if err != nil {
			t.Fatalf("FiscalQuarterRange(%d) error = %v", tt.quarter, err)
		}
		if start.Month() != tt.wantStart || start.Year() != 2024 {
			t.Errorf("Q%d start = %v, want %v 2024", tt.quarter, start, tt.wantStart)
		}
		if end.Month() != tt.wantEnd || end.Year() != tt.endYear {
			t.Errorf("Q%d end = %v, want %v %d", tt.quarter, end, tt.wantEnd, tt.endYear)
		}
	}

	if _, _, err := FiscalQuarterRange(5, 2024, time.UTC); err == nil {
		t.Error("Expected error for quarter 5")
	}
}

func TestSummarizeSales(t *testing.T) {
	sales := []*models.Sale{
		{SaleDate: "05-03-2024 Time: 1:34:09 PM", TotalAmount: 236, TotalGST: 36},
		{SaleDate: "31-03-2024 Time: 11:59:59 PM", TotalAmount: 100, TotalGST: 5},
		{SaleDate: "01-04-2024 Time: 12:00:00 AM", TotalAmount: 50, TotalGST: 0},
		{SaleDate: "garbage", TotalAmount: 10},
	}

	start, end := MonthRange(2024, time.March, time.UTC)
	summary := SummarizeSales("2024-03", sales, start, end)

	if summary.SalesCount != 2 {
		t.Errorf("SalesCount = %d, want 2", summary.SalesCount)
	}
	if summary.TotalAmount != 336 {
		t.Errorf("TotalAmount = %v, want 336", summary.TotalAmount)
	}
	if summary.TotalGST != 41 {
		t.Errorf("TotalGST = %v, want 41", summary.TotalGST)
	}
	if summary.Unparsed != 1 {
		t.Errorf("Unparsed = %d, want 1", summary.Unparsed)
	}
}
