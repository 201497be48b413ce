package budget

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNothingToTransfer is returned when a transfer selects neither rows nor balance.
var ErrNothingToTransfer = errors.New("budget: transfer selects nothing")

// TransferOptions selects what a transfer from one budget year to another carries.
type TransferOptions struct {
	IncludeBalance bool `json:"include_balance"`
	IncludeIncome  bool `json:"include_income"`
	IncludeExpense bool `json:"include_expense"`
}

// Validate rejects a transfer that would do nothing.
func (o TransferOptions) Validate() error {
	if !o.IncludeBalance && !o.CopiesEntries() {
		return ErrNothingToTransfer
	}
	return nil
}

// CopiesEntries reports whether the row-copy phase runs.
func (o TransferOptions) CopiesEntries() bool {
	return o.IncludeIncome || o.IncludeExpense
}

// TypeFilter returns the only entry type to copy when exactly one of income
// and expense is selected. Selecting both means every entry is copied.
func (o TransferOptions) TypeFilter() (EntryType, bool) {
	switch {
	case o.IncludeIncome && !o.IncludeExpense:
		return EntryTypeIncome, true
	case o.IncludeExpense && !o.IncludeIncome:
		return EntryTypeExpense, true
	default:
		return "", false
	}
}

// BalanceToTransfer is the net position of a source budget's entries: total
// income minus total expense over all months. The source's own starting
// balance is not part of it.
func BalanceToTransfer(source []Line) decimal.Decimal {
	return Aggregate(source, decimal.Zero).GrandTotal
}
