package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"budgetplanner/internal/budget"
	"budgetplanner/internal/cache"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/logger"
	"budgetplanner/internal/models"
	"budgetplanner/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db        *gorm.DB
	summaries *cache.SummaryCache
}

// NewCategoryService creates a new CategoryServicer. Summaries are keyed by
// category name, so a rename drops every cached summary of the user.
func NewCategoryService(db *gorm.DB, summaries *cache.SummaryCache) CategoryServicer {
	return &categoryService{db: db, summaries: summaries}
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if utf8.RuneCountInString(name) > budget.MaxCategoryLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is too long (max 100 characters)")
	}
	return name, nil
}

// CreateCategory creates a new category. Without an explicit sort order the
// category is placed after the user's existing ones.
func (s *categoryService) CreateCategory(userID, name string, sortOrder *int) (*models.Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}

	var category *models.Category
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		category, err = createCategory(tx, userID, name, sortOrder)
		return err
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// createCategory inserts a category inside tx after checking the name is free.
func createCategory(tx *gorm.DB, userID, name string, sortOrder *int) (*models.Category, error) {
	var count int64
	if err := tx.Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	order := 0
	if sortOrder != nil {
		order = *sortOrder
	} else {
		var maxOrder *int
		if err := tx.Model(&models.Category{}).
			Where("user_id = ?", userID).
			Select("MAX(sort_order)").
			Scan(&maxOrder).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if maxOrder != nil {
			order = *maxOrder + 1
		}
	}

	category := &models.Category{
		UserID:    userID,
		Name:      name,
		SortOrder: order,
	}
	if err := tx.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories retrieves a page of categories in display order.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	query := s.db.Model(&models.Category{}).Where("user_id = ?", userID)
	return findPage[models.Category](query, page, pagination.CategoryOrder)
}

// findPage runs a paginated listing and maps its errors to AppErrors.
func findPage[T any](query *gorm.DB, page pagination.PageRequest, ordering pagination.Ordering) (*pagination.PageResponse[T], error) {
	result, err := pagination.Find[T](query, page, ordering)
	if errors.Is(err, pagination.ErrUnknownSort) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unsupported sort order '"+page.Sort+"'")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory renames or reorders a category.
func (s *categoryService) UpdateCategory(userID, categoryID string, name *string, sortOrder *int) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		newName, err := validateCategoryName(*name)
		if err != nil {
			return nil, err
		}
		if newName != category.Name {
			var count int64
			if err := s.db.Model(&models.Category{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, newName, categoryID).
				Count(&count).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				return nil, apperrors.ErrDuplicateCategory
			}
			updates["name"] = newName
		}
	}
	if sortOrder != nil {
		updates["sort_order"] = *sortOrder
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if _, renamed := updates["name"]; renamed {
		s.invalidateSummaries(userID)
	}

	return category, nil
}

// DeleteCategory soft-deletes a category no entry refers to.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.Model(&models.Entry{}).Where("category_id = ?", categoryID).Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetCategoryNames lists the names of the user's categories.
func (s *categoryService) GetCategoryNames(userID string) ([]string, error) {
	var names []string
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ?", userID).
		Order("sort_order ASC, name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return names, nil
}

// EnsureCategories resolves names to category ids, creating the ones the user
// does not have yet. It returns the name to id map and the created categories.
func (s *categoryService) EnsureCategories(userID string, names []string) (map[string]string, []models.Category, error) {
	ids := make(map[string]string, len(names))
	created := []models.Category{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Category
		if err := tx.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, c := range existing {
			ids[c.Name] = c.ID
		}

		for _, name := range names {
			if _, ok := ids[name]; ok {
				continue
			}
			category, err := createCategory(tx, userID, name, nil)
			if err != nil {
				return err
			}
			ids[name] = category.ID
			created = append(created, *category)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return ids, created, nil
}

func (s *categoryService) invalidateSummaries(userID string) {
	if s.summaries == nil {
		return
	}
	var budgetIDs []string
	if err := s.db.Model(&models.Budget{}).Where("user_id = ?", userID).Pluck("id", &budgetIDs).Error; err != nil {
		logger.Get().Warnw("failed to list budgets for summary invalidation", "error", err, "user_id", userID)
		return
	}
	for _, id := range budgetIDs {
		s.summaries.Invalidate(id)
	}
}
