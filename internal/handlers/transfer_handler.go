package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetplanner/internal/budget"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/services"
)

// TransferHandler handles carrying a budget into another year.
type TransferHandler struct {
	transferService services.TransferServicer
	auditService    services.AuditServicer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService services.TransferServicer, auditService services.AuditServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService, auditService: auditService}
}

// TransferRequest represents the request payload for a transfer.
type TransferRequest struct {
	TargetBudgetID string `json:"target_budget_id" binding:"required,uuid"`
	budget.TransferOptions
}

// Transfer copies entries and reports the balance of a source budget.
// @Summary     Transfer to another budget
// @Description Copy income and/or expense entries into the target budget and report the balance to carry over
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Source budget ID"
// @Param       request body TransferRequest true "Transfer options"
// @Success     200 {object} services.TransferResult "Transfer result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Transfer stopped part way"
// @Router      /budgets/{id}/transfer [post]
func (h *TransferHandler) Transfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transferService.Transfer(userID, services.TransferRequest{
		SourceBudgetID:  sourceID,
		TargetBudgetID:  req.TargetBudgetID,
		TransferOptions: req.TransferOptions,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{
		"source_budget_id": sourceID,
		"copied_entries":   result.CopiedEntries,
	}
	if result.BalanceToTransfer != nil {
		changes["balance_to_transfer"] = result.BalanceToTransfer.String()
	}
	h.auditService.Log(userID, services.AuditActionTransfer, "budget", req.TargetBudgetID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"result": result})
}
