package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for Transaction.Date.
const DateLayout = "2006-01-02"

// MaxDescriptionLength caps the description, in characters.
const MaxDescriptionLength = 200

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction represents a single income or expense record owned by one user.
type Transaction struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // YYYY-MM-DD
	CreatedAt   time.Time       `json:"createdAt"`
}

// YearMonth returns the calendar year and month of the transaction date.
// Both are zero when the date cannot be parsed.
func (t Transaction) YearMonth() (int, int) {
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return 0, 0
	}
	return d.Year(), int(d.Month())
}

// TransactionFields carries the client-settable fields of a transaction.
// Nil fields were not supplied. Server-assigned fields (id, ownerId,
// createdAt) have no counterpart here and are dropped during decoding.
type TransactionFields struct {
	Type        *TransactionType `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

// Empty reports whether no field was supplied.
func (f TransactionFields) Empty() bool {
	return f.Type == nil && f.Amount == nil && f.Category == nil && f.Description == nil && f.Date == nil
}

// RequireAll records a failure for every field that was not supplied.
func (f TransactionFields) RequireAll() *ValidationError {
	verr := &ValidationError{}
	if f.Type == nil {
		verr.Add("type", "is required")
	}
	if f.Amount == nil {
		verr.Add("amount", "is required")
	}
	if f.Category == nil {
		verr.Add("category", "is required")
	}
	if f.Description == nil {
		verr.Add("description", "is required")
	}
	if f.Date == nil {
		verr.Add("date", "is required")
	}
	return verr
}

// ApplyTo overwrites the supplied fields on t (shallow replacement).
func (f TransactionFields) ApplyTo(t *Transaction) {
	if f.Type != nil {
		t.Type = *f.Type
	}
	if f.Amount != nil {
		t.Amount = *f.Amount
	}
	if f.Category != nil {
		t.Category = *f.Category
	}
	if f.Description != nil {
		t.Description = strings.TrimSpace(*f.Description)
	}
	if f.Date != nil {
		t.Date = strings.TrimSpace(*f.Date)
	}
}

// Validate checks the transaction invariants. today is the current calendar
// date; dates after it are rejected.
func (t Transaction) Validate(today time.Time) *ValidationError {
	verr := &ValidationError{}

	if !t.Type.Valid() {
		verr.Add("type", "must be income or expense")
	} else if !t.Type.Allows(t.Category) {
		verr.Add("category", "is not a valid "+string(t.Type)+" category")
	}

	if !t.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	} else if !t.Amount.Equal(t.Amount.Round(2)) {
		verr.Add("amount", "must have at most two decimal places")
	}

	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		verr.Add("description", "must not be empty")
	} else if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		verr.Add("description", "must be at most 200 characters")
	}

	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		verr.Add("date", "must be a date in YYYY-MM-DD format")
	} else {
		y, m, dd := today.Date()
		if d.After(time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)) {
			verr.Add("date", "must not be in the future")
		}
	}

	return verr
}
