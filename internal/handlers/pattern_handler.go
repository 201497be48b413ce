package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetplanner/internal/budget"
	apperrors "budgetplanner/internal/errors"
)

// PatternHandler exposes amount pattern helpers for entry forms.
type PatternHandler struct{}

// NewPatternHandler creates a new PatternHandler.
func NewPatternHandler() *PatternHandler {
	return &PatternHandler{}
}

// PatternResponse describes twelve monthly amounts and the pattern they match.
type PatternResponse struct {
	Pattern         budget.Pattern    `json:"pattern"`
	RepeatingAmount decimal.Decimal   `json:"repeating_amount"`
	MonthlyAmounts  []decimal.Decimal `json:"monthly_amounts"`
	Total           decimal.Decimal   `json:"total"`
}

func patternResponse(m budget.Months) PatternResponse {
	p, amount := budget.RepeatingAmount(m)
	amounts := make([]decimal.Decimal, budget.MonthsPerYear)
	for month := 1; month <= budget.MonthsPerYear; month++ {
		amounts[month-1] = m.Get(month)
	}
	return PatternResponse{Pattern: p, RepeatingAmount: amount, MonthlyAmounts: amounts, Total: m.Sum()}
}

// ExpandPattern spreads one amount over the months of a pattern.
// @Summary     Expand a pattern
// @Description Spread a repeating amount over the months a pattern populates
// @Tags        patterns
// @Produce     json
// @Security    BearerAuth
// @Param       pattern query string true "monthly, quarterly, half-yearly or yearly"
// @Param       amount  query string true "Repeating amount"
// @Success     200 {object} PatternResponse "Expanded amounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /patterns/expand [get]
func (h *PatternHandler) ExpandPattern(c *gin.Context) {
	p, err := budget.ParsePattern(c.Query("pattern"))
	if err != nil || !p.Expandable() {
		respondWithError(c, apperrors.ErrInvalidPattern)
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(c.Query("amount")))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a number"))
		return
	}
	if amount.IsNegative() {
		respondWithError(c, apperrors.ErrNegativeAmount)
		return
	}

	m, err := budget.Expand(p, amount)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidPattern)
		return
	}

	c.JSON(http.StatusOK, patternResponse(m))
}

// DetectPattern reports which pattern twelve amounts follow.
// @Summary     Detect a pattern
// @Description Infer the pattern of twelve comma-separated monthly amounts
// @Tags        patterns
// @Produce     json
// @Security    BearerAuth
// @Param       amounts query string true "Twelve comma-separated amounts, January first"
// @Success     200 {object} PatternResponse "Detected pattern"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /patterns/detect [get]
func (h *PatternHandler) DetectPattern(c *gin.Context) {
	m, err := budget.ParseMonths(strings.Split(c.Query("amounts"), ","))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidAmounts, err.Error()))
		return
	}

	c.JSON(http.StatusOK, patternResponse(m))
}
