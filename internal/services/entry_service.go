package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetplanner/internal/budget"
	"budgetplanner/internal/cache"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/models"
)

// entryService handles entry-related business logic.
type entryService struct {
	db        *gorm.DB
	summaries *cache.SummaryCache
}

// NewEntryService creates a new EntryServicer. Every mutation drops the
// owning budget's cached summary.
func NewEntryService(db *gorm.DB, summaries *cache.SummaryCache) EntryServicer {
	return &entryService{db: db, summaries: summaries}
}

// Resolve turns the input into the twelve monthly amounts. Negative amounts
// and all-zero vectors are rejected.
func (in AmountsInput) Resolve() (budget.Months, error) {
	var m budget.Months
	switch {
	case in.Pattern == budget.PatternCustom:
		m = in.Custom
	case in.Pattern.Expandable():
		if in.Amount.IsNegative() {
			return m, apperrors.ErrNegativeAmount
		}
		m, _ = budget.Expand(in.Pattern, in.Amount)
	default:
		return m, apperrors.ErrInvalidPattern
	}

	if month, ok := m.FirstNegative(); ok {
		return m, apperrors.WithMessage(apperrors.ErrNegativeAmount, fmt.Sprintf("amount for month %d cannot be negative", month))
	}
	if m.AllZero() {
		return m, apperrors.ErrInvalidAmounts
	}
	return m, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if utf8.RuneCountInString(description) > budget.MaxDescriptionLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "description is too long (max 500 characters)")
	}
	return description, nil
}

// findBudget loads a budget owned by userID.
func findBudget(db *gorm.DB, userID, budgetID string) (*models.Budget, error) {
	var b models.Budget
	if err := db.Where("id = ? AND user_id = ?", budgetID, userID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &b, nil
}

// findCategory loads a category owned by userID.
func findCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var c models.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &c, nil
}

// insertEntry writes an entry and its twelve amounts inside tx.
func insertEntry(tx *gorm.DB, entry *models.Entry, m budget.Months) error {
	entry.Amounts = nil
	if err := tx.Omit("Category", "Amounts").Create(entry).Error; err != nil {
		return err
	}
	amounts := models.NewEntryAmounts(entry.ID, m)
	if err := tx.Create(&amounts).Error; err != nil {
		return err
	}
	entry.Amounts = amounts
	return nil
}

// withAmounts preloads an entry's category and its amounts in month order.
func withAmounts(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Amounts", func(db *gorm.DB) *gorm.DB {
		return db.Order("month ASC")
	})
}

// CreateEntry creates an entry with all twelve amounts in one transaction.
func (s *entryService) CreateEntry(userID, budgetID string, input CreateEntryInput) (*models.Entry, error) {
	if !input.EntryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "entry type must be 'income' or 'expense'")
	}
	description, err := validateDescription(input.Description)
	if err != nil {
		return nil, err
	}
	m, err := input.Amounts.Resolve()
	if err != nil {
		return nil, err
	}

	if _, err := findBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}
	category, err := findCategory(s.db, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		UserID:      userID,
		BudgetID:    budgetID,
		CategoryID:  category.ID,
		Description: description,
		EntryType:   input.EntryType,
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return insertEntry(tx, entry, m)
	}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	entry.Category = category
	s.summaries.Invalidate(budgetID)
	return entry, nil
}

// GetBudgetEntries lists a budget's entries with their amounts, optionally
// restricted to one entry type.
func (s *entryService) GetBudgetEntries(userID, budgetID string, entryType *budget.EntryType) ([]models.Entry, error) {
	if _, err := findBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}
	return loadEntries(s.db, userID, budgetID, entryType)
}

func loadEntries(db *gorm.DB, userID, budgetID string, entryType *budget.EntryType) ([]models.Entry, error) {
	query := db.Where("budget_id = ? AND user_id = ?", budgetID, userID)
	if entryType != nil {
		query = query.Where("entry_type = ?", *entryType)
	}

	var entries []models.Entry
	if err := withAmounts(query).Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func (s *entryService) findEntry(userID, entryID string) (*models.Entry, error) {
	var entry models.Entry
	if err := withAmounts(s.db).Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// GetEntryByID returns an entry with the pattern its amounts follow.
func (s *entryService) GetEntryByID(userID, entryID string) (*EntryDetail, error) {
	entry, err := s.findEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	pattern, amount := budget.RepeatingAmount(entry.Months())
	return &EntryDetail{
		Entry:           *entry,
		Pattern:         pattern,
		RepeatingAmount: amount,
		Total:           entry.Line().Total(),
	}, nil
}

// UpdateEntry changes an entry's description, category or type.
func (s *entryService) UpdateEntry(userID, entryID string, input UpdateEntryInput) (*models.Entry, error) {
	entry, err := s.findEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Description != nil {
		description, err := validateDescription(*input.Description)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if input.EntryType != nil {
		if !input.EntryType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "entry type must be 'income' or 'expense'")
		}
		updates["entry_type"] = *input.EntryType
	}
	if input.CategoryID != nil {
		category, err := findCategory(s.db, userID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = category.ID
		entry.Category = category
	}

	if len(updates) > 0 {
		if err := s.db.Model(entry).Omit("Category", "Amounts").Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.summaries.Invalidate(entry.BudgetID)
	}

	return entry, nil
}

// UpdateEntryAmount sets the amount of a single month.
func (s *entryService) UpdateEntryAmount(userID, entryID string, month int, amount decimal.Decimal) (*models.Entry, error) {
	if !budget.ValidMonth(month) {
		return nil, apperrors.ErrInvalidMonth
	}
	if amount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}

	entry, err := s.findEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	result := s.db.Model(&models.EntryAmount{}).
		Where("entry_id = ? AND month = ?", entry.ID, month).
		Update("amount", amount)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("entry %s has no amount row for month %d", entry.ID, month))
	}

	for i := range entry.Amounts {
		if entry.Amounts[i].Month == month {
			entry.Amounts[i].Amount = amount
		}
	}
	s.summaries.Invalidate(entry.BudgetID)
	return entry, nil
}

// ReplaceEntryAmounts rewrites all twelve amounts in one transaction.
func (s *entryService) ReplaceEntryAmounts(userID, entryID string, amounts AmountsInput) (*models.Entry, error) {
	m, err := amounts.Resolve()
	if err != nil {
		return nil, err
	}

	entry, err := s.findEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for month := 1; month <= budget.MonthsPerYear; month++ {
			if err := tx.Model(&models.EntryAmount{}).
				Where("entry_id = ? AND month = ?", entry.ID, month).
				Update("amount", m.Get(month)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range entry.Amounts {
		entry.Amounts[i].Amount = m.Get(entry.Amounts[i].Month)
	}
	s.summaries.Invalidate(entry.BudgetID)
	return entry, nil
}

// DeleteEntry soft-deletes an entry. Its amount rows stay attached to it.
func (s *entryService) DeleteEntry(userID, entryID string) error {
	entry, err := s.findEntry(userID, entryID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Entry{}, "id = ?", entry.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.summaries.Invalidate(entry.BudgetID)
	return nil
}
