package services

import (
	"errors"
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

// transferService copies entries and carries balances between budget years.
type transferService struct {
	db        *gorm.DB
	summaries *cache.SummaryCache
	publisher events.Publisher
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB, summaries *cache.SummaryCache, publisher events.Publisher) TransferServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &transferService{db: db, summaries: summaries, publisher: publisher}
}

// Transfer runs the two optional phases of a transfer.
//
// The row phase copies the source's entries (all of them, or only one type
// when exactly one of income and expense is selected) into the target, one
// entry and its twelve amounts per transaction. It stops at the first
// failure and keeps what was already copied.
//
// The balance phase computes the net of every source entry regardless of
// the type selection. The result is returned, not written to the target.
func (s *transferService) Transfer(userID string, req TransferRequest) (*TransferResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.ErrEmptyTransfer
	}
	if req.SourceBudgetID == req.TargetBudgetID {
		return nil, apperrors.ErrSameBudgetTransfer
	}

	source, err := findBudget(s.db, userID, req.SourceBudgetID)
	if err != nil {
		return nil, err
	}
	target, err := findBudget(s.db, userID, req.TargetBudgetID)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{}

	if req.CopiesEntries() {
		var filter *budget.EntryType
		if t, ok := req.TypeFilter(); ok {
			filter = &t
		}

		entries, err := loadEntries(s.db, userID, source.ID, filter)
		if err != nil {
			metrics.Transfers.WithLabelValues(metrics.ResultFailure).Inc()
			return nil, err
		}

		copied, err := s.copyEntries(target.ID, entries)
		result.CopiedEntries = copied
		metrics.TransferredEntries.Add(float64(copied))
		if copied > 0 {
			s.summaries.Invalidate(target.ID)
		}
		if err != nil {
			metrics.Transfers.WithLabelValues(metrics.ResultFailure).Inc()
			logger.Get().Errorw("transfer stopped",
				"error", err,
				"source_budget_id", source.ID,
				"target_budget_id", target.ID,
				"copied", copied,
				"entries", len(entries),
			)
			failed := apperrors.Wrap(apperrors.ErrTransferFailed, err)
			failed.Message = fmt.Sprintf("Transfer failed after copying %d of %d entries", copied, len(entries))
			return nil, failed
		}
	}

	if req.IncludeBalance {
		entries, err := loadEntries(s.db, userID, source.ID, nil)
		if err != nil {
			metrics.Transfers.WithLabelValues(metrics.ResultFailure).Inc()
			return nil, err
		}
		balance := budget.BalanceToTransfer(entryLines(entries))
		result.BalanceToTransfer = &balance
	}

	metrics.Transfers.WithLabelValues(metrics.ResultSuccess).Inc()

	data := map[string]any{
		"source_budget_id": source.ID,
		"copied_entries":   result.CopiedEntries,
	}
	if result.BalanceToTransfer != nil {
		data["balance_to_transfer"] = result.BalanceToTransfer.String()
	}
	publish(s.publisher, events.New(events.TypeTransferCompleted, userID, target.ID, data))

	return result, nil
}

func (s *transferService) copyEntries(targetBudgetID string, entries []models.Entry) (int, error) {
	copied := 0
	for i := range entries {
		src := &entries[i]
		if len(src.Amounts) != budget.MonthsPerYear {
			return copied, errors.New("source entry " + src.ID + " does not have twelve amounts")
		}

		dup := &models.Entry{
			UserID:      src.UserID,
			BudgetID:    targetBudgetID,
			CategoryID:  src.CategoryID,
			Description: src.Description,
			EntryType:   src.EntryType,
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return insertEntry(tx, dup, src.Months())
		})
		if err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}
