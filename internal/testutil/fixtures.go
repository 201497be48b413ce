package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"budgetplanner/internal/budget"
	"budgetplanner/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates a budget for the given year with a zero
// starting balance.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, year int) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithBalance(t, db, userID, year, decimal.Zero)
}

// CreateTestBudgetWithBalance creates a budget with the given starting balance.
func CreateTestBudgetWithBalance(t *testing.T, db *gorm.DB, userID string, year int, start decimal.Decimal) *models.Budget {
	t.Helper()

	b := &models.Budget{
		UserID:          userID,
		Name:            fmt.Sprintf("Test Budget %d", nextID()),
		Year:            year,
		StartingBalance: start,
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return b
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates a category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestEntry creates an entry with its twelve amount rows. Amounts are
// whole units, January first; missing months are zero.
func CreateTestEntry(t *testing.T, db *gorm.DB, b *models.Budget, categoryID string, entryType budget.EntryType, amounts ...int64) *models.Entry {
	t.Helper()

	if len(amounts) > budget.MonthsPerYear {
		t.Fatalf("too many amounts: %d", len(amounts))
	}
	var m budget.Months
	for i, a := range amounts {
		m[i] = decimal.NewFromInt(a)
	}

	entry := &models.Entry{
		UserID:      b.UserID,
		BudgetID:    b.ID,
		CategoryID:  categoryID,
		Description: fmt.Sprintf("Test Entry %d", nextID()),
		EntryType:   entryType,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Amounts").Create(entry).Error; err != nil {
			return err
		}
		rows := models.NewEntryAmounts(entry.ID, m)
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		entry.Amounts = rows
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}

// Monthly returns twelve copies of amount, for CreateTestEntry.
func Monthly(amount int64) []int64 {
	out := make([]int64, budget.MonthsPerYear)
	for i := range out {
		out[i] = amount
	}
	return out
}
