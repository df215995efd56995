package calculator

import (
	"crm-ledger/internal/models"
)

// BalanceStatus classifies a customer's net balance
type BalanceStatus string

const (
	BalanceReceivable BalanceStatus = "receivable" // customer owes
	BalanceOverpaid   BalanceStatus = "overpaid"
	BalanceClear      BalanceStatus = "clear"
)

// amounts closer to zero than half a cent are clear
const balanceTolerance = 0.005

// CustomerBalance is one customer's aggregate position
type CustomerBalance struct {
	Customer      models.Customer `json:"customer"`
	TotalSales    float64         `json:"total_sales"`
	TotalPayments float64         `json:"total_payments"`
	Net           float64         `json:"net"` // Positive = customer owes, Negative = overpaid
}

// Status returns the balance classification of Net
func (b CustomerBalance) Status() BalanceStatus {
	switch {
	case b.Net > balanceTolerance:
		return BalanceReceivable
	case b.Net < -balanceTolerance:
		return BalanceOverpaid
	default:
		return BalanceClear
	}
}

// ComputeBalances aggregates sales and payments per customer, in the order of
// the customers slice. Sales and payments whose customer is not in the slice
// are ignored.
func ComputeBalances(customers []*models.Customer, sales []*models.Sale, payments []*models.Payment) []CustomerBalance {
	salesByCustomer := make(map[int64]float64, len(customers))
	for _, s := range sales {
		salesByCustomer[s.CustomerID] += s.TotalAmount
	}

	paymentsByCustomer := make(map[int64]float64, len(customers))
	for _, p := range payments {
		paymentsByCustomer[p.CustomerID] += p.Amount
	}

	balances := make([]CustomerBalance, 0, len(customers))
	for _, c := range customers {
		totalSales := salesByCustomer[c.ID]
		totalPayments := paymentsByCustomer[c.ID]
		balances = append(balances, CustomerBalance{
			Customer:      *c,
			TotalSales:    totalSales,
			TotalPayments: totalPayments,
			Net:           totalSales - totalPayments,
		})
	}

	return balances
}

// Receivables returns total sales minus total payments across all records,
// including those of deleted customers.
func Receivables(sales []*models.Sale, payments []*models.Payment) float64 {
	var total float64
	for _, s := range sales {
		total += s.TotalAmount
	}
	for _, p := range payments {
		total -= p.Amount
	}
	return total
}
