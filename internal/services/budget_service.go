package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetplanner/internal/budget"
	"budgetplanner/internal/cache"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/events"
	"budgetplanner/internal/logger"
	"budgetplanner/internal/metrics"
	"budgetplanner/internal/models"
	"budgetplanner/internal/pagination"
)

// Budget years accepted on create and update.
const (
	MinBudgetYear = 1900
	MaxBudgetYear = 9999
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db        *gorm.DB
	summaries *cache.SummaryCache
	publisher events.Publisher
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, summaries *cache.SummaryCache, publisher events.Publisher) BudgetServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &budgetService{db: db, summaries: summaries, publisher: publisher}
}

func validateBudgetFields(name string, year int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if year < MinBudgetYear || year > MaxBudgetYear {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "budget year is out of range")
	}
	return name, nil
}

func (s *budgetService) nameTaken(userID, name string, year int, exceptID string) (bool, error) {
	query := s.db.Model(&models.Budget{}).Where("user_id = ? AND name = ? AND year = ?", userID, name, year)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// CreateBudget creates a budget for a year.
func (s *budgetService) CreateBudget(userID, name string, year int, startingBalance decimal.Decimal) (*models.Budget, error) {
	name, err := validateBudgetFields(name, year)
	if err != nil {
		return nil, err
	}

	taken, err := s.nameTaken(userID, name, year, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateBudget
	}

	b := &models.Budget{
		UserID:          userID,
		Name:            name,
		Year:            year,
		StartingBalance: startingBalance,
	}
	if err := s.db.Create(b).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return b, nil
}

// GetUserBudgets returns a page of the user's budgets, newest year first
// unless page.Sort picks another order.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, year *int) (*pagination.PageResponse[models.Budget], error) {
	query := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if year != nil {
		query = query.Where("year = ?", *year)
	}
	return findPage[models.Budget](query, page, pagination.BudgetOrder)
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return findBudget(s.db, userID, budgetID)
}

// UpdateBudget renames a budget or moves it to another year.
func (s *budgetService) UpdateBudget(userID, budgetID string, name *string, year *int) (*models.Budget, error) {
	b, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	newName, newYear := b.Name, b.Year
	if name != nil {
		newName = *name
	}
	if year != nil {
		newYear = *year
	}
	newName, err = validateBudgetFields(newName, newYear)
	if err != nil {
		return nil, err
	}

	if newName == b.Name && newYear == b.Year {
		return b, nil
	}

	taken, err := s.nameTaken(userID, newName, newYear, b.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateBudget
	}

	if err := s.db.Model(b).Updates(map[string]interface{}{"name": newName, "year": newYear}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return b, nil
}

// UpdateStartingBalance commits a new starting balance. Callers decide when
// to commit; nothing else writes this field.
func (s *budgetService) UpdateStartingBalance(userID, budgetID string, startingBalance decimal.Decimal) (*models.Budget, error) {
	b, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(b).Update("starting_balance", startingBalance).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	b.StartingBalance = startingBalance
	s.summaries.Invalidate(b.ID)

	publish(s.publisher, events.New(events.TypeStartingBalanceCommitted, userID, b.ID, map[string]any{
		"starting_balance": startingBalance.String(),
	}))
	return b, nil
}

// DeleteBudget soft-deletes a budget together with its entries.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	b, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", b.ID).Delete(&models.Entry{}).Error; err != nil {
			return err
		}
		return tx.Delete(b).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaries.Invalidate(b.ID)
	return nil
}

// GetBudgetSummary aggregates the budget's entries from its starting balance.
func (s *budgetService) GetBudgetSummary(userID, budgetID string) (*budget.Summary, error) {
	// Read before the budget row too: the starting balance feeds the summary.
	gen := s.summaries.Generation(budgetID)

	b, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.summaries.Get(b.ID); ok {
		metrics.SummaryCache.WithLabelValues(metrics.ResultHit).Inc()
		return &cached, nil
	}
	metrics.SummaryCache.WithLabelValues(metrics.ResultMiss).Inc()

	entries, err := loadEntries(s.db, userID, b.ID, nil)
	if err != nil {
		return nil, err
	}

	summary := budget.Aggregate(entryLines(entries), b.StartingBalance)
	s.summaries.Set(b.ID, gen, summary)
	return &summary, nil
}

// GetBudgetBalance reports the net of all entries next to the stored
// starting balance.
func (s *budgetService) GetBudgetBalance(userID, budgetID string) (*BudgetBalance, error) {
	summary, err := s.GetBudgetSummary(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return &BudgetBalance{
		Balance:         summary.GrandTotal,
		StartingBalance: summary.StartingBalance,
		EndBalance:      summary.EndBalance(),
	}, nil
}

func entryLines(entries []models.Entry) []budget.Line {
	lines := make([]budget.Line, 0, len(entries))
	for i := range entries {
		lines = append(lines, entries[i].Line())
	}
	return lines
}

// publish sends an event. Failures are logged, never returned.
func publish(p events.Publisher, event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Publish(ctx, event); err != nil {
		logger.Get().Warnw("failed to publish event",
			"error", err,
			"type", event.Type,
			"budget_id", event.BudgetID,
		)
	}
}
