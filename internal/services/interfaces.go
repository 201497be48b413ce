package services

import (
	"github.com/shopspring/decimal"

	"budgetplanner/internal/budget"
	"budgetplanner/internal/models"
	"budgetplanner/internal/pagination"
)

// Every method that reads or writes user data takes the acting user's id as
// its first argument and checks ownership before any mutation.

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	RecordLogin(userID string) error
}

// SettingsServicer defines the contract for user display preferences.
type SettingsServicer interface {
	GetSettings(userID string) (*models.Settings, error)
	UpdateSettings(userID string, currency, locale *string) (*models.Settings, error)
}

// BudgetBalance is the net position of a budget's entries next to its
// starting balance.
type BudgetBalance struct {
	Balance         decimal.Decimal `json:"balance"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	EndBalance      decimal.Decimal `json:"end_balance"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, name string, year int, startingBalance decimal.Decimal) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, year *int) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, name *string, year *int) (*models.Budget, error)
	UpdateStartingBalance(userID, budgetID string, startingBalance decimal.Decimal) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetSummary(userID, budgetID string) (*budget.Summary, error)
	GetBudgetBalance(userID, budgetID string) (*BudgetBalance, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, sortOrder *int) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name *string, sortOrder *int) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	GetCategoryNames(userID string) ([]string, error)
	EnsureCategories(userID string, names []string) (map[string]string, []models.Category, error)
}

// AmountsInput describes the twelve amounts of an entry either as a fixed
// pattern with one repeating amount or as an explicit custom vector.
type AmountsInput struct {
	Pattern budget.Pattern
	Amount  decimal.Decimal
	Custom  budget.Months
}

// CreateEntryInput holds the fields of a new entry.
type CreateEntryInput struct {
	CategoryID  string
	Description string
	EntryType   budget.EntryType
	Amounts     AmountsInput
}

// UpdateEntryInput holds the optional fields of an entry update.
type UpdateEntryInput struct {
	CategoryID  *string
	Description *string
	EntryType   *budget.EntryType
}

// EntryDetail is an entry with the pattern its amounts match, for pre-filling
// an edit form.
type EntryDetail struct {
	models.Entry
	Pattern         budget.Pattern  `json:"pattern"`
	RepeatingAmount decimal.Decimal `json:"repeating_amount"`
	Total           decimal.Decimal `json:"total"`
}

// EntryServicer defines the contract for entry-related business logic.
type EntryServicer interface {
	CreateEntry(userID, budgetID string, input CreateEntryInput) (*models.Entry, error)
	GetBudgetEntries(userID, budgetID string, entryType *budget.EntryType) ([]models.Entry, error)
	GetEntryByID(userID, entryID string) (*EntryDetail, error)
	UpdateEntry(userID, entryID string, input UpdateEntryInput) (*models.Entry, error)
	UpdateEntryAmount(userID, entryID string, month int, amount decimal.Decimal) (*models.Entry, error)
	ReplaceEntryAmounts(userID, entryID string, amounts AmountsInput) (*models.Entry, error)
	DeleteEntry(userID, entryID string) error
}

// ImportResult reports what an import checked and wrote.
type ImportResult struct {
	Validation        budget.ValidationResult `json:"validation"`
	ImportedEntries   int                     `json:"imported_entries"`
	CreatedCategories []string                `json:"created_categories"`
}

// ImportServicer defines the contract for importing entries from CSV rows.
type ImportServicer interface {
	PreviewImport(userID, budgetID string, rows [][]string) (*budget.ValidationResult, error)
	ImportRows(userID, budgetID string, rows [][]string) (*ImportResult, error)
}

// TransferRequest names the budgets of a transfer and what it carries.
type TransferRequest struct {
	SourceBudgetID string
	TargetBudgetID string
	budget.TransferOptions
}

// TransferResult reports a completed transfer. BalanceToTransfer is set only
// when the balance was requested; it is not written to the target budget.
type TransferResult struct {
	CopiedEntries     int              `json:"copied_entries"`
	BalanceToTransfer *decimal.Decimal `json:"balance_to_transfer,omitempty"`
}

// TransferServicer defines the contract for copying data between budget years.
type TransferServicer interface {
	Transfer(userID string, req TransferRequest) (*TransferResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
