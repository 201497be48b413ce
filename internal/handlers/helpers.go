package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetplanner/internal/budget"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/services"
	"budgetplanner/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return strings.ToLower(id), nil
}

// parseEntryTypeQuery reads the optional ?type= filter.
func parseEntryTypeQuery(c *gin.Context) (*budget.EntryType, error) {
	v := c.Query("type")
	if v == "" {
		return nil, nil
	}
	t := budget.EntryType(v)
	if !t.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'income' or 'expense'")
	}
	return &t, nil
}

// AmountsRequest describes twelve monthly amounts as a pattern with one
// repeating amount, or as an explicit list when the pattern is custom.
type AmountsRequest struct {
	Pattern        budget.Pattern    `json:"pattern" binding:"required,amount_pattern"`
	Amount         decimal.Decimal   `json:"amount" binding:"nonneg_decimal"`
	MonthlyAmounts []decimal.Decimal `json:"monthly_amounts" binding:"omitempty,dive,nonneg_decimal"`
}

func (r AmountsRequest) input() (services.AmountsInput, error) {
	in := services.AmountsInput{Pattern: r.Pattern, Amount: r.Amount}
	if r.Pattern != budget.PatternCustom {
		return in, nil
	}
	if len(r.MonthlyAmounts) != budget.MonthsPerYear {
		return in, apperrors.WithMessage(apperrors.ErrInvalidAmounts, "monthly_amounts must have 12 values for a custom pattern")
	}
	for i, a := range r.MonthlyAmounts {
		in.Custom[i] = a
	}
	return in, nil
}

// respondWithError records err on the context for middleware.ErrorHandler,
// which writes the JSON error body.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
}
