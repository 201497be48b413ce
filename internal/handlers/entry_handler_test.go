package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetplanner/internal/budget"
	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/models"
	"budgetplanner/internal/services"
)

// --- mock entry service ---

type mockEntryService struct {
	createEntryFn         func(userID, budgetID string, input services.CreateEntryInput) (*models.Entry, error)
	getBudgetEntriesFn    func(userID, budgetID string, entryType *budget.EntryType) ([]models.Entry, error)
	getEntryByIDFn        func(userID, entryID string) (*services.EntryDetail, error)
	updateEntryFn         func(userID, entryID string, input services.UpdateEntryInput) (*models.Entry, error)
	updateEntryAmountFn   func(userID, entryID string, month int, amount decimal.Decimal) (*models.Entry, error)
	replaceEntryAmountsFn func(userID, entryID string, amounts services.AmountsInput) (*models.Entry, error)
	deleteEntryFn         func(userID, entryID string) error
}

var _ services.EntryServicer = (*mockEntryService)(nil)

func (m *mockEntryService) CreateEntry(userID, budgetID string, input services.CreateEntryInput) (*models.Entry, error) {
	if m.createEntryFn != nil {
		return m.createEntryFn(userID, budgetID, input)
	}
	return &models.Entry{}, nil
}

func (m *mockEntryService) GetBudgetEntries(userID, budgetID string, entryType *budget.EntryType) ([]models.Entry, error) {
	if m.getBudgetEntriesFn != nil {
		return m.getBudgetEntriesFn(userID, budgetID, entryType)
	}
	return []models.Entry{}, nil
}

func (m *mockEntryService) GetEntryByID(userID, entryID string) (*services.EntryDetail, error) {
	if m.getEntryByIDFn != nil {
		return m.getEntryByIDFn(userID, entryID)
	}
	return &services.EntryDetail{}, nil
}

func (m *mockEntryService) UpdateEntry(userID, entryID string, input services.UpdateEntryInput) (*models.Entry, error) {
	if m.updateEntryFn != nil {
		return m.updateEntryFn(userID, entryID, input)
	}
	return &models.Entry{}, nil
}

func (m *mockEntryService) UpdateEntryAmount(userID, entryID string, month int, amount decimal.Decimal) (*models.Entry, error) {
	if m.updateEntryAmountFn != nil {
		return m.updateEntryAmountFn(userID, entryID, month, amount)
	}
	return &models.Entry{}, nil
}

func (m *mockEntryService) ReplaceEntryAmounts(userID, entryID string, amounts services.AmountsInput) (*models.Entry, error) {
	if m.replaceEntryAmountsFn != nil {
		return m.replaceEntryAmountsFn(userID, entryID, amounts)
	}
	return &models.Entry{}, nil
}

func (m *mockEntryService) DeleteEntry(userID, entryID string) error {
	if m.deleteEntryFn != nil {
		return m.deleteEntryFn(userID, entryID)
	}
	return nil
}

func setupEntryRouter(handler *EntryHandler) *gin.Engine {
	r := newTestRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budgets/:id/entries", handler.CreateEntry)
	auth.GET("/budgets/:id/entries", handler.GetBudgetEntries)
	auth.GET("/entries/:id", handler.GetEntry)
	auth.PUT("/entries/:id", handler.UpdateEntry)
	auth.DELETE("/entries/:id", handler.DeleteEntry)
	auth.PUT("/entries/:id/amounts", handler.ReplaceEntryAmounts)
	auth.PUT("/entries/:id/amounts/:month", handler.UpdateEntryAmount)
	return r
}

func TestEntryHandler_CreateEntry(t *testing.T) {
	t.Run("returns 201 for a pattern entry", func(t *testing.T) {
		var got services.CreateEntryInput
		svc := &mockEntryService{
			createEntryFn: func(_, budgetID string, input services.CreateEntryInput) (*models.Entry, error) {
				got = input
				return &models.Entry{
					Base:        models.Base{ID: testEntryID},
					BudgetID:    budgetID,
					CategoryID:  input.CategoryID,
					Description: input.Description,
					EntryType:   input.EntryType,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupEntryRouter(NewEntryHandler(svc, audit))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries",
			`{"category_id":"`+testCatID+`","description":"Rent","entry_type":"expense","pattern":"monthly","amount":"900"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amounts.Pattern != budget.PatternMonthly {
			t.Errorf("expected monthly pattern, got %q", got.Amounts.Pattern)
		}
		if !got.Amounts.Amount.Equal(decimal.NewFromInt(900)) {
			t.Errorf("expected amount 900, got %s", got.Amounts.Amount)
		}
		if got.EntryType != budget.EntryTypeExpense {
			t.Errorf("expected expense, got %q", got.EntryType)
		}
		audit.assertLogged(t, services.AuditActionCreate, "entry")
	})

	t.Run("passes custom amounts in month order", func(t *testing.T) {
		var got services.AmountsInput
		svc := &mockEntryService{
			createEntryFn: func(_, _ string, input services.CreateEntryInput) (*models.Entry, error) {
				got = input.Amounts
				return &models.Entry{}, nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries",
			`{"category_id":"`+testCatID+`","description":"Bonus","entry_type":"income","pattern":"custom",
			"monthly_amounts":["1","2","3","4","5","6","7","8","9","10","11","12"]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Custom.Get(12).Equal(decimal.NewFromInt(12)) {
			t.Errorf("expected December 12, got %s", got.Custom.Get(12))
		}
	})

	t.Run("returns 400 when custom amounts are not twelve", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries",
			`{"category_id":"`+testCatID+`","description":"Bonus","entry_type":"income","pattern":"custom","monthly_amounts":["1","2"]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNTS")
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries",
			`{"category_id":"`+testCatID+`","description":"Rent","entry_type":"savings","pattern":"monthly","amount":"900"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown pattern", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries",
			`{"category_id":"`+testCatID+`","description":"Rent","entry_type":"expense","pattern":"weekly","amount":"900"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on negative amount", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries",
			`{"category_id":"`+testCatID+`","description":"Rent","entry_type":"expense","pattern":"monthly","amount":"-1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns service error", func(t *testing.T) {
		svc := &mockEntryService{
			createEntryFn: func(string, string, services.CreateEntryInput) (*models.Entry, error) {
				return nil, apperrors.ErrInvalidAmounts
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries",
			`{"category_id":"`+testCatID+`","description":"Rent","entry_type":"expense","pattern":"monthly","amount":"0"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNTS")
	})
}

func TestEntryHandler_GetBudgetEntries(t *testing.T) {
	t.Run("passes type filter", func(t *testing.T) {
		var got *budget.EntryType
		svc := &mockEntryService{
			getBudgetEntriesFn: func(_, _ string, entryType *budget.EntryType) ([]models.Entry, error) {
				got = entryType
				return []models.Entry{{Description: "Salary"}}, nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID+"/entries?type=income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got == nil || *got != budget.EntryTypeIncome {
			t.Errorf("expected income filter, got %v", got)
		}
		entries := parseJSON(t, rec)["entries"].([]interface{})
		if len(entries) != 1 {
			t.Errorf("expected 1 entry, got %d", len(entries))
		}
	})

	t.Run("returns 400 on bad type filter", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID+"/entries?type=Income", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestEntryHandler_GetEntry(t *testing.T) {
	svc := &mockEntryService{
		getEntryByIDFn: func(_, entryID string) (*services.EntryDetail, error) {
			return &services.EntryDetail{
				Entry:           models.Entry{Base: models.Base{ID: entryID}, Description: "Insurance"},
				Pattern:         budget.PatternQuarterly,
				RepeatingAmount: decimal.NewFromInt(300),
				Total:           decimal.NewFromInt(1200),
			}, nil
		},
	}
	r := setupEntryRouter(NewEntryHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/entries/"+testEntryID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	entry := parseJSON(t, rec)["entry"].(map[string]interface{})
	if entry["pattern"] != "quarterly" {
		t.Errorf("expected quarterly, got %v", entry["pattern"])
	}
	if entry["description"] != "Insurance" {
		t.Errorf("expected Insurance, got %v", entry["description"])
	}
}

func TestEntryHandler_UpdateEntry(t *testing.T) {
	var got services.UpdateEntryInput
	svc := &mockEntryService{
		updateEntryFn: func(_, entryID string, input services.UpdateEntryInput) (*models.Entry, error) {
			got = input
			return &models.Entry{Base: models.Base{ID: entryID}, Description: *input.Description}, nil
		},
	}
	audit := &mockAuditService{}
	r := setupEntryRouter(NewEntryHandler(svc, audit))

	rec := doRequest(r, "PUT", "/entries/"+testEntryID, `{"description":"Rent incl. heating"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.CategoryID != nil || got.EntryType != nil {
		t.Errorf("expected only description, got %+v", got)
	}
	audit.assertLogged(t, services.AuditActionUpdate, "entry")
}

func TestEntryHandler_UpdateEntryAmount(t *testing.T) {
	t.Run("sets one month", func(t *testing.T) {
		var gotMonth int
		var gotAmount decimal.Decimal
		svc := &mockEntryService{
			updateEntryAmountFn: func(_, entryID string, month int, amount decimal.Decimal) (*models.Entry, error) {
				gotMonth, gotAmount = month, amount
				return &models.Entry{Base: models.Base{ID: entryID}}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupEntryRouter(NewEntryHandler(svc, audit))

		rec := doRequest(r, "PUT", "/entries/"+testEntryID+"/amounts/7", `{"amount":"125.5"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotMonth != 7 || !gotAmount.Equal(decimal.RequireFromString("125.5")) {
			t.Errorf("expected month 7 = 125.5, got %d = %s", gotMonth, gotAmount)
		}
		audit.assertLogged(t, services.AuditActionUpdateAmount, "entry")
	})

	for _, month := range []string{"0", "13", "july"} {
		t.Run("rejects month "+month, func(t *testing.T) {
			r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, &mockAuditService{}))

			rec := doRequest(r, "PUT", "/entries/"+testEntryID+"/amounts/"+month, `{"amount":"1"}`)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_MONTH")
		})
	}

	t.Run("rejects negative amount", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/entries/"+testEntryID+"/amounts/3", `{"amount":"-5"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestEntryHandler_ReplaceEntryAmounts(t *testing.T) {
	var got services.AmountsInput
	svc := &mockEntryService{
		replaceEntryAmountsFn: func(_, entryID string, amounts services.AmountsInput) (*models.Entry, error) {
			got = amounts
			return &models.Entry{Base: models.Base{ID: entryID}}, nil
		},
	}
	audit := &mockAuditService{}
	r := setupEntryRouter(NewEntryHandler(svc, audit))

	rec := doRequest(r, "PUT", "/entries/"+testEntryID+"/amounts", `{"pattern":"half-yearly","amount":"600"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Pattern != budget.PatternHalfYearly || !got.Amount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("unexpected amounts input %+v", got)
	}
	audit.assertLogged(t, services.AuditActionReplaceAmounts, "entry")
}

func TestEntryHandler_DeleteEntry(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, audit))

		rec := doRequest(r, "DELETE", "/entries/"+testEntryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		audit.assertLogged(t, services.AuditActionDelete, "entry")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockEntryService{
			deleteEntryFn: func(string, string) error { return apperrors.ErrEntryNotFound },
		}
		r := setupEntryRouter(NewEntryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/entries/"+testEntryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ENTRY_NOT_FOUND")
	})
}
