package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetplanner/internal/budget"
	"budgetplanner/internal/cache"
	"budgetplanner/internal/events"
	"budgetplanner/internal/models"
	"budgetplanner/internal/pagination"
	"budgetplanner/internal/testutil"
)

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestCache(t *testing.T) *cache.SummaryCache {
	t.Helper()
	c, err := cache.NewSummaryCache(100, time.Minute)
	if err != nil {
		t.Fatalf("failed to create summary cache: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCreateBudget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		b, err := svc.CreateBudget(user.ID, "  Household ", 2025, decimal.NewFromInt(1000))
		testutil.AssertNoError(t, err)

		if b.ID == "" {
			t.Fatal("expected budget ID to be set")
		}
		if b.Name != "Household" {
			t.Errorf("expected trimmed name Household, got %q", b.Name)
		}
		if b.Year != 2025 {
			t.Errorf("expected year 2025, got %d", b.Year)
		}
		testutil.AssertDecimal(t, b.StartingBalance, "1000")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, "   ", 2025, decimal.Zero)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("year_out_of_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, "Old", 1899, decimal.Zero)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_name_same_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, "Home", 2025, decimal.Zero)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, "Home", 2025, decimal.Zero)
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")

		_, err = svc.CreateBudget(user.ID, "Home", 2026, decimal.Zero)
		testutil.AssertNoError(t, err)
	})

	t.Run("same_name_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user1.ID, "Home", 2025, decimal.Zero)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateBudget(user2.ID, "Home", 2025, decimal.Zero)
		testutil.AssertNoError(t, err)
	})
}

func TestGetUserBudgets(t *testing.T) {
	t.Run("returns_user_budgets_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudget(t, db, user1.ID, 2024)
		testutil.CreateTestBudget(t, db, user1.ID, 2025)
		testutil.CreateTestBudget(t, db, user2.ID, 2025)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserBudgets(user1.ID, page, nil)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Fatalf("expected 2 budgets, got %d", result.TotalItems)
		}
		if result.Data[0].Year != 2025 {
			t.Errorf("expected newest year first, got %d", result.Data[0].Year)
		}
	})

	t.Run("filter_by_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudget(t, db, user.ID, 2024)
		testutil.CreateTestBudget(t, db, user.ID, 2025)
		testutil.CreateTestBudget(t, db, user.ID, 2025)

		year := 2025
		result, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{}, &year)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 budgets for 2025, got %d", result.TotalItems)
		}
		if result.PageSize != 20 {
			t.Errorf("expected default page size 20, got %d", result.PageSize)
		}
	})

	t.Run("sort_by_year_ascending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudget(t, db, user.ID, 2025)
		testutil.CreateTestBudget(t, db, user.ID, 2024)

		result, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{Sort: "year"}, nil)
		testutil.AssertNoError(t, err)
		if result.Data[0].Year != 2024 {
			t.Errorf("expected oldest year first, got %d", result.Data[0].Year)
		}
	})

	t.Run("unknown_sort", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{Sort: "balance"}, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetBudgetByID(t *testing.T) {
	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBudget(t, db, owner.ID, 2025)

		_, err := svc.GetBudgetByID(other.ID, b.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBudget(t, db, user.ID, 2025)

		name := "Renamed"
		updated, err := svc.UpdateBudget(user.ID, b.ID, &name, nil)
		testutil.AssertNoError(t, err)

		if updated.Name != "Renamed" {
			t.Errorf("expected name Renamed, got %s", updated.Name)
		}
	})

	t.Run("conflicts_with_existing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestBudget(t, db, user.ID, 2025)
		second := testutil.CreateTestBudget(t, db, user.ID, 2025)

		_, err := svc.UpdateBudget(user.ID, second.ID, &first.Name, nil)
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
	})
}

func TestUpdateStartingBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	pub := &recordingPublisher{}
	svc := NewBudgetService(db, newTestCache(t), pub)
	user := testutil.CreateTestUser(t, db)
	b := testutil.CreateTestBudget(t, db, user.ID, 2025)

	summary, err := svc.GetBudgetSummary(user.ID, b.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, summary.StartingBalance, "0")

	_, err = svc.UpdateStartingBalance(user.ID, b.ID, decimal.RequireFromString("250.50"))
	testutil.AssertNoError(t, err)

	summary, err = svc.GetBudgetSummary(user.ID, b.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, summary.StartingBalance, "250.50")
	testutil.AssertDecimal(t, summary.RunningBalance[11], "250.50")

	got := pub.types()
	if len(got) != 1 || got[0] != events.TypeStartingBalanceCommitted {
		t.Errorf("expected one starting balance event, got %v", got)
	}
}

func TestDeleteBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, nil, nil)
	user := testutil.CreateTestUser(t, db)
	b := testutil.CreateTestBudget(t, db, user.ID, 2025)
	cat := testutil.CreateTestCategory(t, db, user.ID)
	testutil.CreateTestEntry(t, db, b, cat.ID, budget.EntryTypeIncome, testutil.Monthly(10)...)

	testutil.AssertNoError(t, svc.DeleteBudget(user.ID, b.ID))

	_, err := svc.GetBudgetByID(user.ID, b.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

	var entries int64
	db.Model(&models.Entry{}).Where("budget_id = ?", b.ID).Count(&entries)
	if entries != 0 {
		t.Errorf("expected entries to be deleted with the budget, got %d", entries)
	}
}

func TestGetBudgetSummary(t *testing.T) {
	t.Run("salary_and_rent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, newTestCache(t), nil)
		user := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBudgetWithBalance(t, db, user.ID, 2025, decimal.NewFromInt(1000))
		work := testutil.CreateTestCategoryNamed(t, db, user.ID, "Work")
		home := testutil.CreateTestCategoryNamed(t, db, user.ID, "Home")
		testutil.CreateTestEntry(t, db, b, work.ID, budget.EntryTypeIncome, testutil.Monthly(5000)...)
		testutil.CreateTestEntry(t, db, b, home.ID, budget.EntryTypeExpense, testutil.Monthly(2000)...)

		summary, err := svc.GetBudgetSummary(user.ID, b.ID)
		testutil.AssertNoError(t, err)

		for i := 0; i < 12; i++ {
			testutil.AssertDecimal(t, summary.MonthlyNet[i], "3000")
		}
		testutil.AssertDecimal(t, summary.RunningBalance[0], "4000")
		testutil.AssertDecimal(t, summary.RunningBalance[1], "7000")
		testutil.AssertDecimal(t, summary.RunningBalance[11], "37000")
		testutil.AssertDecimal(t, summary.GrandTotal, "36000")
		testutil.AssertDecimal(t, summary.CategoryTotals["Work"], "60000")
		testutil.AssertDecimal(t, summary.CategoryTotals["Home"], "-24000")
	})

	t.Run("reflects_entry_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		summaries := newTestCache(t)
		svc := NewBudgetService(db, summaries, nil)
		entries := NewEntryService(db, summaries)
		user := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBudget(t, db, user.ID, 2025)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		first, err := svc.GetBudgetSummary(user.ID, b.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, first.GrandTotal, "0")

		_, err = entries.CreateEntry(user.ID, b.ID, CreateEntryInput{
			CategoryID:  cat.ID,
			Description: "Salary",
			EntryType:   budget.EntryTypeIncome,
			Amounts:     AmountsInput{Pattern: budget.PatternMonthly, Amount: decimal.NewFromInt(100)},
		})
		testutil.AssertNoError(t, err)

		second, err := svc.GetBudgetSummary(user.ID, b.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, second.GrandTotal, "1200")
	})

	t.Run("edit_during_recompute_is_not_cached", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		summaries := newTestCache(t)
		svc := NewBudgetService(db, summaries, nil)
		entries := NewEntryService(db, summaries)
		user := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBudget(t, db, user.ID, 2025)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		entry := testutil.CreateTestEntry(t, db, b, cat.ID, budget.EntryTypeIncome, testutil.Monthly(100)...)

		// Commit an edit after the entries are loaded but before the summary
		// is stored.
		armed := false
		err := db.Callback().Query().After("gorm:preload").Register("test:edit_after_load", func(tx *gorm.DB) {
			if !armed || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "entries" {
				return
			}
			armed = false
			if _, err := entries.UpdateEntryAmount(user.ID, entry.ID, 1, decimal.NewFromInt(900)); err != nil {
				t.Errorf("concurrent edit failed: %v", err)
			}
		})
		testutil.AssertNoError(t, err)

		armed = true
		first, err := svc.GetBudgetSummary(user.ID, b.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, first.MonthlyIncome[0], "100")
		if armed {
			t.Fatal("expected the edit to run during the summary load")
		}

		second, err := svc.GetBudgetSummary(user.ID, b.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, second.MonthlyIncome[0], "900")
		testutil.AssertDecimal(t, second.GrandTotal, "2000")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil, nil)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBudget(t, db, owner.ID, 2025)

		_, err := svc.GetBudgetSummary(other.ID, b.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetBudgetBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, nil, nil)
	user := testutil.CreateTestUser(t, db)
	b := testutil.CreateTestBudgetWithBalance(t, db, user.ID, 2025, decimal.NewFromInt(500))
	cat := testutil.CreateTestCategory(t, db, user.ID)
	testutil.CreateTestEntry(t, db, b, cat.ID, budget.EntryTypeIncome, testutil.Monthly(100)...)
	testutil.CreateTestEntry(t, db, b, cat.ID, budget.EntryTypeExpense, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 300)

	balance, err := svc.GetBudgetBalance(user.ID, b.ID)
	testutil.AssertNoError(t, err)

	testutil.AssertDecimal(t, balance.Balance, "900")
	testutil.AssertDecimal(t, balance.StartingBalance, "500")
	testutil.AssertDecimal(t, balance.EndBalance, "1400")
}
