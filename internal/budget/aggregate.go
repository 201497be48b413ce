package budget

import "github.com/shopspring/decimal"

// UnknownCategory labels lines whose category could not be resolved.
const UnknownCategory = "Unknown"

// Line is one entry as aggregation sees it.
type Line struct {
	CategoryName string
	Type         EntryType
	Amounts      Months
}

// Total is the row total: the sum of the line's amounts, negative for expenses.
func (l Line) Total() decimal.Decimal {
	return l.Type.Signed(l.Amounts.Sum())
}

// Summary is the derived view of a budget. Nothing in it is persisted.
//
// Amounts marshal as decimal strings ("3000", "1250.5"), never as JSON
// numbers, so clients get the exact value. Monthly fields are twelve-element
// arrays indexed from January.
type Summary struct {
	StartingBalance decimal.Decimal            `json:"starting_balance"`
	MonthlyIncome   Months                     `json:"monthly_income"`
	MonthlyExpense  Months                     `json:"monthly_expense"`
	MonthlyNet      Months                     `json:"monthly_net"`
	RunningBalance  Months                     `json:"running_balance"`
	TotalIncome     decimal.Decimal            `json:"total_income"`
	TotalExpense    decimal.Decimal            `json:"total_expense"`
	GrandTotal      decimal.Decimal            `json:"grand_total"`
	CategoryTotals  map[string]decimal.Decimal `json:"category_totals"`
}

// EndBalance is the running balance after December.
func (s Summary) EndBalance() decimal.Decimal {
	return s.RunningBalance[MonthsPerYear-1]
}

// Aggregate folds lines into monthly income, expense and net totals and a
// running balance seeded with startingBalance. Lines of an unknown type are
// skipped.
//
// Category totals are a display rollup keyed by category name: each line's
// signed row total is added to its category, and lines without a name are
// collected under UnknownCategory.
func Aggregate(lines []Line, startingBalance decimal.Decimal) Summary {
	s := Summary{
		StartingBalance: startingBalance,
		TotalIncome:     decimal.Zero,
		TotalExpense:    decimal.Zero,
		GrandTotal:      decimal.Zero,
		CategoryTotals:  make(map[string]decimal.Decimal),
	}
	for i := range s.MonthlyIncome {
		s.MonthlyIncome[i] = decimal.Zero
		s.MonthlyExpense[i] = decimal.Zero
		s.MonthlyNet[i] = decimal.Zero
	}

	for _, line := range lines {
		switch line.Type {
		case EntryTypeIncome:
			for i, v := range line.Amounts {
				s.MonthlyIncome[i] = s.MonthlyIncome[i].Add(v)
				s.MonthlyNet[i] = s.MonthlyNet[i].Add(v)
			}
		case EntryTypeExpense:
			for i, v := range line.Amounts {
				s.MonthlyExpense[i] = s.MonthlyExpense[i].Add(v)
				s.MonthlyNet[i] = s.MonthlyNet[i].Sub(v)
			}
		default:
			continue
		}

		name := line.CategoryName
		if name == "" {
			name = UnknownCategory
		}
		s.CategoryTotals[name] = s.CategoryTotals[name].Add(line.Total())
	}

	s.TotalIncome = s.MonthlyIncome.Sum()
	s.TotalExpense = s.MonthlyExpense.Sum()
	s.GrandTotal = s.MonthlyNet.Sum()

	balance := startingBalance
	for i, net := range s.MonthlyNet {
		balance = balance.Add(net)
		s.RunningBalance[i] = balance
	}

	return s
}
