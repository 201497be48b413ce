package services

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"gorm.io/gorm"

	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/models"
)

// settingsService handles user display preferences.
type settingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{db: db}
}

// GetSettings returns the user's settings, creating the defaults on first read.
func (s *settingsService) GetSettings(userID string) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	settings = models.Settings{
		UserID:   userID,
		Currency: models.DefaultCurrency,
		Locale:   models.DefaultLocale,
	}
	if err := s.db.Create(&settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settings, nil
}

// UpdateSettings changes the currency and/or locale.
func (s *settingsService) UpdateSettings(userID string, currency, locale *string) (*models.Settings, error) {
	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*currency))
		if len(code) != 3 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be a three-letter ISO 4217 code")
		}
		updates["currency"] = code
	}
	if locale != nil {
		tag, err := language.Parse(strings.TrimSpace(*locale))
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "locale must be a BCP 47 language tag")
		}
		updates["locale"] = tag.String()
	}

	if len(updates) > 0 {
		if err := s.db.Model(settings).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return settings, nil
}
