package models

// Default display preferences for users who never saved any.
const (
	DefaultCurrency = "DKK"
	DefaultLocale   = "da-DK"
)

// Settings holds a user's display preferences. Amounts are stored without a
// currency; these only affect formatting.
type Settings struct {
	Base
	UserID   string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Currency string `gorm:"size:3;not null" json:"currency"`
	Locale   string `gorm:"size:35;not null" json:"locale"`
}
