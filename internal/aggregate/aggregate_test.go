package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sungenyeint/money-tracker/internal/models"
)

func tx(typ models.TransactionType, amount string, cat models.Category, date string) models.Transaction {
	return models.Transaction{
		Type:     typ,
		Amount:   decimal.RequireFromString(amount),
		Category: cat,
		Date:     date,
	}
}

func scenario() []models.Transaction {
	return []models.Transaction{
		tx(models.TypeIncome, "1000.00", models.CategorySalary, "2024-01-05"),
		tx(models.TypeExpense, "200.00", models.CategoryFood, "2024-01-10"),
		tx(models.TypeExpense, "50.00", models.CategoryFood, "2024-02-01"),
	}
}

func mixed() []models.Transaction {
	return []models.Transaction{
		tx(models.TypeExpense, "0.10", models.CategoryFood, "2023-12-31"),
		tx(models.TypeExpense, "0.20", models.CategoryShopping, "2024-01-01"),
		tx(models.TypeIncome, "2500.00", models.CategorySalary, "2024-01-25"),
		tx(models.TypeExpense, "33.33", models.CategoryBills, "2024-01-28"),
		tx(models.TypeExpense, "66.67", models.CategoryFood, "2024-02-14"),
		tx(models.TypeIncome, "120.50", models.CategoryFreelance, "2024-02-20"),
		tx(models.TypeExpense, "19.99", models.CategoryEntertainment, "2024-02-21"),
	}
}

func TestScenario(t *testing.T) {
	ts := scenario()

	assert.Equal(t, "750.00", Format(TotalBalance(ts)))

	breakdown := BreakdownByCategory(ts, models.TypeExpense)
	require.Len(t, breakdown, 1)
	assert.Equal(t, models.CategoryFood, breakdown[0].Category)
	assert.True(t, breakdown[0].Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "100", breakdown[0].Percentage.String())

	series := MonthlySeries(ts, Ascending)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-01", series[0].Month)
	assert.True(t, series[0].Income.Equal(decimal.NewFromInt(1000)))
	assert.True(t, series[0].Expense.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "2024-02", series[1].Month)
	assert.True(t, series[1].Income.IsZero())
	assert.True(t, series[1].Expense.Equal(decimal.NewFromInt(50)))
}

func TestTotalBalance_MatchesTotals(t *testing.T) {
	for _, ts := range [][]models.Transaction{nil, scenario(), mixed()} {
		totals := TotalsByType(ts)
		assert.True(t, TotalBalance(ts).Equal(totals.Income.Sub(totals.Expense)))
		assert.True(t, totals.Balance().Equal(TotalBalance(ts)))
	}
}

func TestBreakdownByCategory_SumsToExpenseTotal(t *testing.T) {
	ts := mixed()
	sum := decimal.Zero
	for _, share := range BreakdownByCategory(ts, models.TypeExpense) {
		sum = sum.Add(share.Amount)
	}
	assert.True(t, sum.Equal(TotalsByType(ts).Expense))
}

func TestBreakdownByCategory_NoDrift(t *testing.T) {
	var ts []models.Transaction
	for i := 0; i < 1000; i++ {
		ts = append(ts, tx(models.TypeExpense, "0.10", models.CategoryFood, "2024-01-01"))
	}
	breakdown := BreakdownByCategory(ts, models.TypeExpense)
	require.Len(t, breakdown, 1)
	assert.Equal(t, "100.00", Format(breakdown[0].Amount))
}

func TestBreakdownByCategory_PercentagesAndOrder(t *testing.T) {
	ts := []models.Transaction{
		tx(models.TypeExpense, "1", models.CategoryFood, "2024-01-01"),
		tx(models.TypeExpense, "1", models.CategoryTravel, "2024-01-01"),
		tx(models.TypeExpense, "1", models.CategoryBills, "2024-01-01"),
		tx(models.TypeIncome, "1000", models.CategorySalary, "2024-01-01"),
	}

	breakdown := BreakdownByCategory(ts, models.TypeExpense)
	require.Len(t, breakdown, 3)
	// Equal amounts fall back to name order.
	assert.Equal(t, models.CategoryBills, breakdown[0].Category)
	assert.Equal(t, models.CategoryFood, breakdown[1].Category)
	assert.Equal(t, models.CategoryTravel, breakdown[2].Category)
	for _, share := range breakdown {
		// Percentage is against the expense total, not the grand total.
		assert.Equal(t, "33.3", share.Percentage.String())
	}

	assert.Empty(t, BreakdownByCategory(nil, models.TypeExpense))
}

func TestMonthlySeries_DescendingByDefault(t *testing.T) {
	series := MonthlySeries(mixed(), ParseOrder(""))
	require.Len(t, series, 3)
	assert.Equal(t, "2024-02", series[0].Month)
	assert.Equal(t, "2024-01", series[1].Month)
	assert.Equal(t, "2023-12", series[2].Month)
	assert.Equal(t, 2023, series[2].Year)
	assert.Equal(t, 12, series[2].MonthNo)
}

func TestMonthlySeries_UsesDateNotCreatedAt(t *testing.T) {
	t1 := tx(models.TypeExpense, "5", models.CategoryFood, "2024-01-31")
	t1.CreatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	series := MonthlySeries([]models.Transaction{t1}, Descending)
	require.Len(t, series, 1)
	assert.Equal(t, "2024-01", series[0].Month)
}

func TestFilter(t *testing.T) {
	ts := mixed()

	assert.Len(t, Filter(ts, Criteria{}), len(ts))
	assert.Len(t, Filter(ts, Criteria{Year: 2024}), 6)
	assert.Len(t, Filter(ts, Criteria{Month: 1}), 3)
	assert.Len(t, Filter(ts, Criteria{Year: 2024, Month: 2, Type: models.TypeExpense}), 2)
	assert.Len(t, Filter(ts, Criteria{Category: models.CategoryFood}), 2)
	assert.Empty(t, Filter(ts, Criteria{Year: 2022}))
}

func TestFilter_Idempotent(t *testing.T) {
	ts := mixed()
	criteria := []Criteria{
		{},
		{Year: 2024},
		{Year: 2024, Month: 2},
		{Type: models.TypeIncome},
		{Category: models.CategoryFood, Month: 2},
	}
	for _, c := range criteria {
		once := Filter(ts, c)
		assert.Equal(t, once, Filter(once, c))
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	ts := mixed()
	before := make([]models.Transaction, len(ts))
	copy(before, ts)

	Filter(ts, Criteria{Type: models.TypeExpense})
	Recent(ts, 2)
	MonthlySeries(ts, Ascending)

	assert.Equal(t, before, ts)
}

func TestRecent(t *testing.T) {
	a := tx(models.TypeExpense, "1", models.CategoryFood, "2024-02-01")
	a.CreatedAt = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	b := tx(models.TypeExpense, "2", models.CategoryFood, "2024-02-01")
	b.CreatedAt = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	c := tx(models.TypeExpense, "3", models.CategoryFood, "2024-01-01")

	recent := Recent([]models.Transaction{c, a, b}, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].Amount.String())
	assert.Equal(t, "1", recent[1].Amount.String())
}

func TestYears(t *testing.T) {
	assert.Equal(t, []int{2024, 2023}, Years(mixed()))
	assert.Empty(t, Years(nil))
}

func TestSummarize(t *testing.T) {
	s := Summarize(mixed(), Criteria{Year: 2024, Month: 2})

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "33.84", Format(s.Balance))
	assert.Equal(t, "120.50", Format(s.Totals.Income))
	assert.Equal(t, "86.66", Format(s.Totals.Expense))
	assert.Len(t, s.ExpenseBreakdown, 2)
	assert.Len(t, s.IncomeBreakdown, 1)
	assert.Len(t, s.Monthly, 1)
	assert.Len(t, s.Recent, 3)
	assert.Equal(t, []int{2024, 2023}, s.Years)
}
