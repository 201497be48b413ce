package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetplanner/internal/budget"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/services"
)

// EntryHandler handles budget entry requests.
type EntryHandler struct {
	entryService services.EntryServicer
	auditService services.AuditServicer
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryService services.EntryServicer, auditService services.AuditServicer) *EntryHandler {
	return &EntryHandler{entryService: entryService, auditService: auditService}
}

// CreateEntryRequest represents the request payload for creating an entry.
type CreateEntryRequest struct {
	CategoryID  string           `json:"category_id" binding:"required,uuid"`
	Description string           `json:"description" binding:"required,min=1,max=500"`
	EntryType   budget.EntryType `json:"entry_type" binding:"required,entry_type"`
	AmountsRequest
}

// UpdateEntryRequest represents the request payload for updating an entry.
type UpdateEntryRequest struct {
	CategoryID  *string           `json:"category_id" binding:"omitempty,uuid"`
	Description *string           `json:"description" binding:"omitempty,min=1,max=500"`
	EntryType   *budget.EntryType `json:"entry_type" binding:"omitempty,entry_type"`
}

// UpdateAmountRequest sets the amount of a single month.
type UpdateAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"nonneg_decimal"`
}

// CreateEntry handles adding an entry to a budget.
// @Summary     Create an entry
// @Description Add an income or expense entry with twelve monthly amounts
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Budget ID"
// @Param       request body CreateEntryRequest true "Entry details"
// @Success     201 {object} models.Entry "Entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries [post]
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amounts, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.entryService.CreateEntry(userID, budgetID, services.CreateEntryInput{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		EntryType:   req.EntryType,
		Amounts:     amounts,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreate, "entry", entry.ID, c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID, "entry_type": entry.EntryType, "pattern": req.Pattern})

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// GetBudgetEntries handles listing the entries of a budget.
// @Summary     Get budget entries
// @Description Get all entries of a budget with their monthly amounts
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Budget ID"
// @Param       type query string false "Filter by entry type (income or expense)"
// @Success     200 {array}  models.Entry "Entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries [get]
func (h *EntryHandler) GetBudgetEntries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryType, err := parseEntryTypeQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.entryService.GetBudgetEntries(userID, budgetID, entryType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetEntry handles retrieving a single entry.
// @Summary     Get entry by ID
// @Description Get an entry with the pattern its amounts match
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {object} services.EntryDetail "Entry details"
// @Failure     400 {object} ErrorResponse "Invalid entry ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id} [get]
func (h *EntryHandler) GetEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.entryService.GetEntryByID(userID, entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// UpdateEntry handles changing an entry's category, description or type.
// @Summary     Update entry
// @Description Update the category, description or type of an entry
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Entry ID"
// @Param       request body UpdateEntryRequest true "Updated entry details"
// @Success     200 {object} models.Entry "Updated entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id} [put]
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.entryService.UpdateEntry(userID, entryID, services.UpdateEntryInput{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		EntryType:   req.EntryType,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionUpdate, "entry", entry.ID, c.ClientIP(),
		map[string]interface{}{"category_id": entry.CategoryID, "entry_type": entry.EntryType})

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// UpdateEntryAmount handles setting the amount of one month.
// @Summary     Update a monthly amount
// @Description Set the amount of a single month of an entry
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Entry ID"
// @Param       month   path int                 true "Month (1-12)"
// @Param       request body UpdateAmountRequest true "Amount"
// @Success     200 {object} models.Entry "Updated entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id}/amounts/{month} [put]
func (h *EntryHandler) UpdateEntryAmount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || !budget.ValidMonth(month) {
		respondWithError(c, apperrors.ErrInvalidMonth)
		return
	}

	var req UpdateAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.entryService.UpdateEntryAmount(userID, entryID, month, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionUpdateAmount, "entry", entry.ID, c.ClientIP(),
		map[string]interface{}{"month": month, "amount": req.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// ReplaceEntryAmounts handles replacing all twelve amounts of an entry.
// @Summary     Replace monthly amounts
// @Description Replace all twelve amounts from a pattern or a custom list
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Entry ID"
// @Param       request body AmountsRequest true "Amounts"
// @Success     200 {object} models.Entry "Updated entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id}/amounts [put]
func (h *EntryHandler) ReplaceEntryAmounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AmountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amounts, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.entryService.ReplaceEntryAmounts(userID, entryID, amounts)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionReplaceAmounts, "entry", entry.ID, c.ClientIP(),
		map[string]interface{}{"pattern": req.Pattern})

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry handles deleting an entry.
// @Summary     Delete entry
// @Description Delete an entry and its monthly amounts
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {object} map[string]string "Entry deleted"
// @Failure     400 {object} ErrorResponse "Invalid entry ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id} [delete]
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.entryService.DeleteEntry(userID, entryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionDelete, "entry", entryID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully"})
}
