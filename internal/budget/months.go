// Package budget holds the arithmetic of a yearly household budget: how a
// repeating amount spreads over the year, how entries fold into monthly and
// running totals, how imported rows are checked and what a transfer between
// budget years carries over.
//
// Everything here is a pure function of its arguments. Persistence, the
// acting user and request handling live in the services package.
package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MonthsPerYear is the number of amount slots every entry owns.
const MonthsPerYear = 12

// EntryType decides the sign an entry's amounts carry in aggregation.
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// ParseEntryType accepts "income" or "expense" in any case, ignoring
// surrounding whitespace.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("budget: unknown entry type %q", s)
	}
	return t, nil
}

// Valid reports whether t is income or expense.
func (t EntryType) Valid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

// Signed returns amount as it counts towards net totals.
func (t EntryType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == EntryTypeExpense {
		return amount.Neg()
	}
	return amount
}

// Months is one amount per calendar month. Index 0 is January; use Get and
// Set for 1-based access.
type Months [MonthsPerYear]decimal.Decimal

// ValidMonth reports whether month is in 1..12.
func ValidMonth(month int) bool {
	return month >= 1 && month <= MonthsPerYear
}

// Get returns the amount for a 1-based month. Out of range months read as zero.
func (m Months) Get(month int) decimal.Decimal {
	if !ValidMonth(month) {
		return decimal.Zero
	}
	return m[month-1]
}

// Set stores the amount for a 1-based month. Out of range months are ignored.
func (m *Months) Set(month int, amount decimal.Decimal) {
	if ValidMonth(month) {
		m[month-1] = amount
	}
}

// Sum adds all twelve amounts.
func (m Months) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// AllZero reports whether no month carries an amount.
func (m Months) AllZero() bool {
	for _, v := range m {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// FirstNegative returns the first 1-based month holding a negative amount.
func (m Months) FirstNegative() (int, bool) {
	for i, v := range m {
		if v.IsNegative() {
			return i + 1, true
		}
	}
	return 0, false
}

// Equal compares two vectors month by month by value.
func (m Months) Equal(other Months) bool {
	for i := range m {
		if !m[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// ParseMonths reads twelve amount strings. The error names the 1-based month
// that failed.
func ParseMonths(values []string) (Months, error) {
	var m Months
	if len(values) != MonthsPerYear {
		return m, fmt.Errorf("budget: expected %d amounts, got %d", MonthsPerYear, len(values))
	}
	for i, raw := range values {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return m, fmt.Errorf("budget: invalid amount for month %d: %q", i+1, raw)
		}
		m[i] = d
	}
	return m, nil
}
