// Package aggregate derives read-only views (totals, category breakdowns,
// monthly series) from a list of transactions.
//
// Every function is pure: inputs are never mutated and nothing here performs
// I/O. Amounts are summed as decimals and only rounded when a percentage or a
// display string is produced. Input is assumed to be validated already.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sungenyeint/money-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Totals holds the summed income and expense of a transaction set.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Balance returns income minus expense.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// For returns the total of the given type, or zero for an unknown type.
func (t Totals) For(typ models.TransactionType) decimal.Decimal {
	switch typ {
	case models.TypeIncome:
		return t.Income
	case models.TypeExpense:
		return t.Expense
	default:
		return decimal.Zero
	}
}

// CategoryShare is one slice of a per-category breakdown.
type CategoryShare struct {
	Category   models.Category `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"` // of the type total, one decimal place
}

// MonthTotals is the income and expense of a single calendar month.
type MonthTotals struct {
	Month   string          `json:"month"` // YYYY-MM
	Year    int             `json:"year"`
	MonthNo int             `json:"monthNumber"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Order selects the direction of a monthly series.
type Order int

const (
	// Descending lists the most recent month first.
	Descending Order = iota
	// Ascending lists the oldest month first, for time-series charts.
	Ascending
)

// ParseOrder maps "asc"/"ascending" to Ascending; anything else is Descending.
func ParseOrder(s string) Order {
	switch s {
	case "asc", "ascending":
		return Ascending
	default:
		return Descending
	}
}

// TotalsByType sums amounts per transaction type.
func TotalsByType(transactions []models.Transaction) Totals {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range transactions {
		switch t.Type {
		case models.TypeIncome:
			totals.Income = totals.Income.Add(t.Amount)
		case models.TypeExpense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	return totals
}

// TotalBalance returns total income minus total expense.
func TotalBalance(transactions []models.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range transactions {
		switch t.Type {
		case models.TypeIncome:
			balance = balance.Add(t.Amount)
		case models.TypeExpense:
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

// BreakdownByCategory sums the transactions of type typ per category.
// Percentages are computed against the total of typ only. Categories without
// transactions are omitted. The result is sorted by amount, largest first,
// with ties broken by category name.
func BreakdownByCategory(transactions []models.Transaction, typ models.TransactionType) []CategoryShare {
	sums := make(map[models.Category]decimal.Decimal)
	total := decimal.Zero
	for _, t := range transactions {
		if t.Type != typ {
			continue
		}
		sums[t.Category] = sums[t.Category].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	shares := make([]CategoryShare, 0, len(sums))
	for cat, amount := range sums {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = amount.Div(total).Mul(hundred).Round(1)
		}
		shares = append(shares, CategoryShare{Category: cat, Amount: amount, Percentage: pct})
	}

	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].Amount.Cmp(shares[j].Amount); c != 0 {
			return c > 0
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// MonthlySeries groups transactions by the calendar month of their date.
// Transactions whose date cannot be parsed are skipped.
func MonthlySeries(transactions []models.Transaction, order Order) []MonthTotals {
	byMonth := make(map[string]*MonthTotals)
	for _, t := range transactions {
		year, month := t.YearMonth()
		if year == 0 {
			continue
		}
		key := monthKey(year, month)
		mt, ok := byMonth[key]
		if !ok {
			mt = &MonthTotals{Month: key, Year: year, MonthNo: month, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[key] = mt
		}
		switch t.Type {
		case models.TypeIncome:
			mt.Income = mt.Income.Add(t.Amount)
		case models.TypeExpense:
			mt.Expense = mt.Expense.Add(t.Amount)
		}
	}

	series := make([]MonthTotals, 0, len(byMonth))
	for _, mt := range byMonth {
		series = append(series, *mt)
	}
	sort.Slice(series, func(i, j int) bool {
		if order == Ascending {
			return series[i].Month < series[j].Month
		}
		return series[i].Month > series[j].Month
	})
	return series
}

// Format renders an amount with two decimal places.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
