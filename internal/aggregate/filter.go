package aggregate

import (
	"sort"

	"github.com/sungenyeint/money-tracker/internal/models"
)

// Criteria narrows a transaction set. Zero-valued fields match everything.
type Criteria struct {
	Year     int
	Month    int // 1-12
	Type     models.TransactionType
	Category models.Category
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Matches reports whether t satisfies every set criterion. Year and month are
// taken from the transaction date.
func (c Criteria) Matches(t models.Transaction) bool {
	if c.Type != "" && t.Type != c.Type {
		return false
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	if c.Year != 0 || c.Month != 0 {
		year, month := t.YearMonth()
		if c.Year != 0 && year != c.Year {
			return false
		}
		if c.Month != 0 && month != c.Month {
			return false
		}
	}
	return true
}

// Filter returns the transactions matching c, preserving input order.
func Filter(transactions []models.Transaction, c Criteria) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Recent returns up to n transactions, newest date first. Ties on date are
// ordered by creation time, newest first.
func Recent(transactions []models.Transaction, n int) []models.Transaction {
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Years returns the distinct years present in transaction dates, newest first.
func Years(transactions []models.Transaction) []int {
	seen := make(map[int]bool)
	years := []int{}
	for _, t := range transactions {
		year, _ := t.YearMonth()
		if year == 0 || seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
