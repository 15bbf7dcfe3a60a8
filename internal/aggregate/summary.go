package aggregate

import (
	"github.com/shopspring/decimal"
	"github.com/sungenyeint/money-tracker/internal/models"
)

// RecentLimit is the number of transactions included in a Summary.
const RecentLimit = 5

// Summary is the dashboard overview of a (filtered) transaction set.
type Summary struct {
	Count            int                  `json:"count"`
	Balance          decimal.Decimal      `json:"balance"`
	Totals           Totals               `json:"totals"`
	ExpenseBreakdown []CategoryShare      `json:"expenseBreakdown"`
	IncomeBreakdown  []CategoryShare      `json:"incomeBreakdown"`
	Monthly          []MonthTotals        `json:"monthly"`
	Recent           []models.Transaction `json:"recent"`
	Years            []int                `json:"years"`
}

// Summarize filters transactions by c and computes every derived view.
// Years is computed over the unfiltered set so callers can offer the full
// range of filter options.
func Summarize(transactions []models.Transaction, c Criteria) Summary {
	filtered := Filter(transactions, c)
	totals := TotalsByType(filtered)

	return Summary{
		Count:            len(filtered),
		Balance:          totals.Balance(),
		Totals:           totals,
		ExpenseBreakdown: BreakdownByCategory(filtered, models.TypeExpense),
		IncomeBreakdown:  BreakdownByCategory(filtered, models.TypeIncome),
		Monthly:          MonthlySeries(filtered, Descending),
		Recent:           Recent(filtered, RecentLimit),
		Years:            Years(transactions),
	}
}
