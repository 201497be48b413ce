package services

import (
	"fmt"

	"gorm.io/gorm"

	"budgetplanner/internal/budget"
	"budgetplanner/internal/cache"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/events"
	"budgetplanner/internal/logger"
	"budgetplanner/internal/metrics"
	"budgetplanner/internal/models"
)

// importService turns validated CSV rows into entries.
type importService struct {
	db         *gorm.DB
	categories CategoryServicer
	summaries  *cache.SummaryCache
	publisher  events.Publisher
}

// NewImportService creates a new ImportServicer.
func NewImportService(db *gorm.DB, categories CategoryServicer, summaries *cache.SummaryCache, publisher events.Publisher) ImportServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &importService{db: db, categories: categories, summaries: summaries, publisher: publisher}
}

func (s *importService) validate(userID, budgetID string, rows [][]string) (*models.Budget, budget.ValidationResult, error) {
	b, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, budget.ValidationResult{}, err
	}

	names, err := s.categories.GetCategoryNames(userID)
	if err != nil {
		return nil, budget.ValidationResult{}, err
	}

	return b, budget.ValidateRows(rows, names), nil
}

// PreviewImport checks rows against the user's categories without writing.
func (s *importService) PreviewImport(userID, budgetID string, rows [][]string) (*budget.ValidationResult, error) {
	_, result, err := s.validate(userID, budgetID, rows)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ImportRows validates rows and, if every row passes, creates the missing
// categories and then one entry per row. Rows are written one at a time,
// each entry with its amounts in its own transaction. The first failure
// stops the import; entries written before it stay.
func (s *importService) ImportRows(userID, budgetID string, rows [][]string) (*ImportResult, error) {
	b, validation, err := s.validate(userID, budgetID, rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrCSVEmpty
	}

	metrics.ImportRows.WithLabelValues(metrics.ResultValid).Add(float64(len(validation.ValidRows)))
	metrics.ImportRows.WithLabelValues(metrics.ResultInvalid).Add(float64(len(validation.Errors)))

	result := &ImportResult{Validation: validation, CreatedCategories: []string{}}
	if !validation.OK() {
		return result, apperrors.ErrCSVInvalid
	}

	ids, created, err := s.categories.EnsureCategories(userID, validation.MissingCategories)
	if err != nil {
		return result, apperrors.Wrap(apperrors.ErrImportFailed, err)
	}
	for _, c := range created {
		result.CreatedCategories = append(result.CreatedCategories, c.Name)
	}

	defer s.summaries.Invalidate(b.ID)

	for _, row := range validation.ValidRows {
		entry := &models.Entry{
			UserID:      userID,
			BudgetID:    b.ID,
			CategoryID:  ids[row.Category],
			Description: row.Description,
			EntryType:   row.Type,
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return insertEntry(tx, entry, row.Amounts)
		})
		if err != nil {
			logger.Get().Errorw("import stopped",
				"error", err,
				"budget_id", b.ID,
				"imported", result.ImportedEntries,
				"rows", len(validation.ValidRows),
			)
			failed := apperrors.Wrap(apperrors.ErrImportFailed, err)
			failed.Message = fmt.Sprintf("Import failed after %d of %d rows", result.ImportedEntries, len(validation.ValidRows))
			return result, failed
		}
		result.ImportedEntries++
	}

	logger.Get().Infow("import completed",
		"budget_id", b.ID,
		"imported", result.ImportedEntries,
		"created_categories", len(result.CreatedCategories),
	)
	publish(s.publisher, events.New(events.TypeImportCompleted, userID, b.ID, map[string]any{
		"imported_entries":   result.ImportedEntries,
		"created_categories": result.CreatedCategories,
	}))
	return result, nil
}
