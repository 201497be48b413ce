package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"budgetplanner/internal/csvfile"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/middleware"
	"budgetplanner/internal/services"
)

// ImportHandler handles CSV uploads into a budget.
type ImportHandler struct {
	importService services.ImportServicer
	auditService  services.AuditServicer
	maxBytes      int64
}

// NewImportHandler creates a new ImportHandler. Uploads larger than maxBytes
// are rejected before parsing.
func NewImportHandler(importService services.ImportServicer, auditService services.AuditServicer, maxBytes int64) *ImportHandler {
	return &ImportHandler{importService: importService, auditService: auditService, maxBytes: maxBytes}
}

// readUpload parses the "file" form field into raw CSV rows.
func (h *ImportHandler) readUpload(c *gin.Context) ([][]string, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil || err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "A CSV file must be uploaded in the 'file' field")
	}

	if !strings.HasSuffix(strings.ToLower(formFile.Filename), ".csv") {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "This endpoint only supports .csv files")
	}

	if h.maxBytes > 0 && formFile.Size > h.maxBytes {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("CSV file exceeds the limit of %d bytes", h.maxBytes))
	}

	f, err := formFile.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxBytes > 0 {
		r = io.LimitReader(f, h.maxBytes)
	}

	rows, err := csvfile.Read(r)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrCSVMalformed, err.Error())
	}
	return rows, nil
}

// PreviewImport validates an uploaded CSV file without writing anything.
// @Summary     Preview a CSV import
// @Description Validate a CSV file against a budget and list the categories it would create
// @Tags        imports
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       id   path     string true "Budget ID"
// @Param       file formData file   true "CSV file"
// @Success     200 {object} budget.ValidationResult "Validation result"
// @Failure     400 {object} ErrorResponse "Invalid upload"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/import/preview [post]
func (h *ImportHandler) PreviewImport(c *gin.Context) {
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

	rows, err := h.readUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.importService.PreviewImport(userID, budgetID, rows)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"validation": result})
}

// ImportCSV imports an uploaded CSV file into a budget.
// @Summary     Import a CSV file
// @Description Create one entry per row. Nothing is written when any row is invalid.
// @Tags        imports
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       id   path     string true "Budget ID"
// @Param       file formData file   true "CSV file"
// @Success     201 {object} services.ImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Invalid upload"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     422 {object} ErrorResponse "CSV contains invalid rows"
// @Failure     500 {object} ErrorResponse "Import stopped part way"
// @Router      /budgets/{id}/import [post]
func (h *ImportHandler) ImportCSV(c *gin.Context) {
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

	rows, err := h.readUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.importService.ImportRows(userID, budgetID, rows)
	if err != nil {
		respondWithImportError(c, err, result)
		return
	}

	h.auditService.Log(userID, services.AuditActionImport, "budget", budgetID, c.ClientIP(),
		map[string]interface{}{
			"imported_entries":   result.ImportedEntries,
			"created_categories": result.CreatedCategories,
		})

	c.JSON(http.StatusCreated, gin.H{"result": result})
}

// respondWithImportError adds the import result to the error body when the
// service got far enough to produce one.
func respondWithImportError(c *gin.Context, err error, result *services.ImportResult) {
	if result != nil {
		c.Set(middleware.ErrorDetailsKey, gin.H{"result": result})
	}
	respondWithError(c, err)
}
