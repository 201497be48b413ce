package models

import (
	"budgetplanner/internal/budget"
	"budgetplanner/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entry is one budget line. It always owns exactly twelve EntryAmount rows,
// one per calendar month, created in the same transaction as the entry.
type Entry struct {
	Base
	UserID      string           `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetID    string           `gorm:"type:uuid;not null;index" json:"budget_id"`
	CategoryID  string           `gorm:"type:uuid;not null;index" json:"category_id"`
	Description string           `gorm:"size:500;not null" json:"description"`
	EntryType   budget.EntryType `gorm:"type:varchar(16);not null;index" json:"entry_type"`

	// Relationships
	Category *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Amounts  []EntryAmount `gorm:"foreignKey:EntryID" json:"entry_amounts"`
}

// Months returns the entry's amounts as a month vector. Months without a
// loaded row read as zero.
func (e *Entry) Months() budget.Months {
	var m budget.Months
	for _, a := range e.Amounts {
		m.Set(a.Month, a.Amount)
	}
	return m
}

// Line converts the entry for aggregation. The category name is empty when
// the category was not preloaded or no longer exists.
func (e *Entry) Line() budget.Line {
	line := budget.Line{Type: e.EntryType, Amounts: e.Months()}
	if e.Category != nil {
		line.CategoryName = e.Category.Name
	}
	return line
}

// EntryAmount is the planned amount of one entry in one month. Amounts are
// stored as magnitudes; the entry type gives the sign.
type EntryAmount struct {
	ID      string          `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID string          `gorm:"type:uuid;not null;uniqueIndex:idx_entry_amounts_entry_month" json:"entry_id"`
	Month   int             `gorm:"not null;uniqueIndex:idx_entry_amounts_entry_month" json:"month"`
	Amount  decimal.Decimal `gorm:"type:DECIMAL(20,8);not null;default:0" json:"amount"`
}

// BeforeCreate assigns a UUIDv7 to new amount rows.
func (a *EntryAmount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}

// NewEntryAmounts builds the twelve amount rows for m.
func NewEntryAmounts(entryID string, m budget.Months) []EntryAmount {
	rows := make([]EntryAmount, 0, budget.MonthsPerYear)
	for month := 1; month <= budget.MonthsPerYear; month++ {
		rows = append(rows, EntryAmount{
			EntryID: entryID,
			Month:   month,
			Amount:  m.Get(month),
		})
	}
	return rows
}
