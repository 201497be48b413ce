package budget

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Pattern names how a single repeating amount is spread over the year.
type Pattern string

const (
	PatternCustom     Pattern = "custom"
	PatternMonthly    Pattern = "monthly"
	PatternQuarterly  Pattern = "quarterly"
	PatternHalfYearly Pattern = "half-yearly"
	PatternYearly     Pattern = "yearly"
)

// ErrNotExpandable is returned by Expand for custom or unknown patterns.
// Custom vectors are supplied by the caller month by month.
var ErrNotExpandable = errors.New("budget: pattern has no fixed distribution")

// patternMonths lists the 1-based months a fixed pattern populates.
var patternMonths = map[Pattern][]int{
	PatternMonthly:    {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	PatternQuarterly:  {1, 4, 7, 10},
	PatternHalfYearly: {1, 7},
	PatternYearly:     {1},
}

// detectionOrder is the precedence Detect applies. The first matching shape
// wins, so broader shapes must come before narrower ones.
var detectionOrder = []Pattern{
	PatternMonthly,
	PatternQuarterly,
	PatternHalfYearly,
	PatternYearly,
}

// ParsePattern validates a pattern name.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(s)
	if p == PatternCustom {
		return p, nil
	}
	if _, ok := patternMonths[p]; !ok {
		return "", fmt.Errorf("budget: unknown pattern %q", s)
	}
	return p, nil
}

// Expandable reports whether p has a fixed month distribution.
func (p Pattern) Expandable() bool {
	_, ok := patternMonths[p]
	return ok
}

// Expand spreads amount over the months p populates. All other months are zero.
func Expand(p Pattern, amount decimal.Decimal) (Months, error) {
	var m Months
	months, ok := patternMonths[p]
	if !ok {
		return m, fmt.Errorf("%w: %q", ErrNotExpandable, p)
	}
	for _, month := range months {
		m.Set(month, amount)
	}
	return m, nil
}

// Detect infers which pattern produced m. Vectors that match no fixed shape
// are custom.
func Detect(m Months) Pattern {
	for _, p := range detectionOrder {
		if matchesShape(m, patternMonths[p]) {
			return p
		}
	}
	return PatternCustom
}

// RepeatingAmount returns the detected pattern of m and, unless it is
// custom, the single amount that pattern repeats.
func RepeatingAmount(m Months) (Pattern, decimal.Decimal) {
	p := Detect(m)
	if p == PatternCustom {
		return p, decimal.Zero
	}
	return p, m.Get(1)
}

// matchesShape reports whether every listed month holds the same non-zero
// amount and every other month is exactly zero.
func matchesShape(m Months, months []int) bool {
	want := m.Get(months[0])
	if want.IsZero() {
		return false
	}

	var populated [MonthsPerYear + 1]bool
	for _, month := range months {
		populated[month] = true
	}

	for month := 1; month <= MonthsPerYear; month++ {
		v := m.Get(month)
		if populated[month] {
			if !v.Equal(want) {
				return false
			}
		} else if !v.IsZero() {
			return false
		}
	}
	return true
}
