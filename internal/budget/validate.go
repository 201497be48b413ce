package budget

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Import row layout: description, category, type, then January..December.
const (
	ColumnCount          = 15
	MaxDescriptionLength = 500
	MaxCategoryLength    = 100
)

// EmptyFileMessage is the single error reported for an import without rows.
const EmptyFileMessage = "CSV file is empty"

// ParsedRow is an import row that passed validation.
type ParsedRow struct {
	Description string
	Category    string
	Type        EntryType
	Amounts     Months
}

// MarshalJSON renders amounts as an object keyed by 1-based month.
func (r ParsedRow) MarshalJSON() ([]byte, error) {
	amounts := make(map[string]decimal.Decimal, MonthsPerYear)
	for month := 1; month <= MonthsPerYear; month++ {
		amounts[strconv.Itoa(month)] = r.Amounts.Get(month)
	}
	return json.Marshal(struct {
		Description    string                     `json:"description"`
		Category       string                     `json:"category"`
		Type           EntryType                  `json:"type"`
		MonthlyAmounts map[string]decimal.Decimal `json:"monthly_amounts"`
	}{r.Description, r.Category, r.Type, amounts})
}

// Line converts the row for aggregation.
func (r ParsedRow) Line() Line {
	return Line{CategoryName: r.Category, Type: r.Type, Amounts: r.Amounts}
}

// ValidationResult is the outcome of checking a batch of import rows.
type ValidationResult struct {
	ValidRows         []ParsedRow `json:"valid_rows"`
	MissingCategories []string    `json:"missing_categories"`
	Errors            []string    `json:"errors"`
}

// OK reports whether every row passed.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// ValidateRows checks header-stripped import rows. A row stops at its first
// problem, contributes one message naming its 1-based row number and is left
// out of the valid rows. Categories of valid rows that are not among
// existingCategories are reported once each, in first-seen order.
func ValidateRows(rows [][]string, existingCategories []string) ValidationResult {
	result := ValidationResult{
		ValidRows:         []ParsedRow{},
		MissingCategories: []string{},
		Errors:            []string{},
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, EmptyFileMessage)
		return result
	}

	known := make(map[string]struct{}, len(existingCategories))
	for _, name := range existingCategories {
		known[name] = struct{}{}
	}
	missing := make(map[string]struct{})

	for i, raw := range rows {
		row, msg := parseRow(i+1, raw)
		if msg != "" {
			result.Errors = append(result.Errors, msg)
			continue
		}

		if _, ok := known[row.Category]; !ok {
			if _, seen := missing[row.Category]; !seen {
				missing[row.Category] = struct{}{}
				result.MissingCategories = append(result.MissingCategories, row.Category)
			}
		}
		result.ValidRows = append(result.ValidRows, row)
	}

	return result
}

func parseRow(n int, raw []string) (ParsedRow, string) {
	var row ParsedRow

	if len(raw) < ColumnCount {
		return row, fmt.Sprintf("Row %d: Expected %d columns (Description, Category, Type, + 12 months), got %d", n, ColumnCount, len(raw))
	}

	cells := make([]string, ColumnCount)
	for i := range cells {
		cells[i] = strings.TrimSpace(raw[i])
	}

	row.Description = cells[0]
	if row.Description == "" {
		return row, fmt.Sprintf("Row %d: Missing description (column 1)", n)
	}
	if utf8.RuneCountInString(row.Description) > MaxDescriptionLength {
		return row, fmt.Sprintf("Row %d: Description too long (max %d characters)", n, MaxDescriptionLength)
	}

	row.Category = cells[1]
	if row.Category == "" {
		return row, fmt.Sprintf("Row %d: Missing category (column 2)", n)
	}
	if utf8.RuneCountInString(row.Category) > MaxCategoryLength {
		return row, fmt.Sprintf("Row %d: Category too long (max %d characters)", n, MaxCategoryLength)
	}

	kind := strings.ToLower(cells[2])
	row.Type = EntryType(kind)
	if !row.Type.Valid() {
		return row, fmt.Sprintf("Row %d: Type must be 'income' or 'expense', got '%s' (column 3)", n, kind)
	}

	for i, cell := range cells[3:] {
		month := i + 1
		amount, err := decimal.NewFromString(cell)
		if err != nil {
			return row, fmt.Sprintf("Row %d: Invalid amount for month %d: '%s'", n, month, cell)
		}
		if amount.IsNegative() {
			return row, fmt.Sprintf("Row %d: Amount for month %d cannot be negative", n, month)
		}
		row.Amounts.Set(month, amount)
	}

	if row.Amounts.AllZero() {
		return row, fmt.Sprintf("Row %d: At least one month must have an amount > 0", n)
	}

	return row, ""
}
