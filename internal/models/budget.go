package models

import "github.com/shopspring/decimal"

// Budget is one year of planned income and expenses.
type Budget struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string          `gorm:"not null" json:"name"`
	Year            int             `gorm:"not null;index" json:"year"`
	StartingBalance decimal.Decimal `gorm:"type:DECIMAL(20,8);not null;default:0" json:"starting_balance"`

	// Relationships
	Entries []Entry `gorm:"foreignKey:BudgetID" json:"entries,omitempty"`
}
