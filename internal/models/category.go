package models

// Category labels entries for rollups. Names are unique per user and act as
// the key when imported rows are matched to categories.
type Category struct {
	Base
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}
