package cache

import (
	"testing"
	"time"

	"budgetplanner/internal/budget"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryFor(t *testing.T, amount int64) budget.Summary {
	t.Helper()
	m, err := budget.Expand(budget.PatternMonthly, decimal.NewFromInt(amount))
	require.NoError(t, err)
	return budget.Aggregate([]budget.Line{{CategoryName: "Salary", Type: budget.EntryTypeIncome, Amounts: m}}, decimal.Zero)
}

func TestSummaryCache(t *testing.T) {
	c, err := NewSummaryCache(100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	t.Run("miss then hit", func(t *testing.T) {
		_, ok := c.Get("b1")
		assert.False(t, ok)

		assert.True(t, c.Set("b1", c.Generation("b1"), summaryFor(t, 100)))

		got, ok := c.Get("b1")
		require.True(t, ok)
		assert.True(t, got.GrandTotal.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("invalidate", func(t *testing.T) {
		c.Set("b2", c.Generation("b2"), summaryFor(t, 5))
		c.Invalidate("b2")

		_, ok := c.Get("b2")
		assert.False(t, ok)
	})

	t.Run("returned summaries are copies", func(t *testing.T) {
		c.Set("b3", c.Generation("b3"), summaryFor(t, 10))

		first, ok := c.Get("b3")
		require.True(t, ok)
		first.CategoryTotals["Salary"] = decimal.NewFromInt(-1)

		second, ok := c.Get("b3")
		require.True(t, ok)
		assert.True(t, second.CategoryTotals["Salary"].Equal(decimal.NewFromInt(120)))
	})

	t.Run("set after invalidate is dropped", func(t *testing.T) {
		gen := c.Generation("b4")
		c.Invalidate("b4")

		assert.False(t, c.Set("b4", gen, summaryFor(t, 7)))
		_, ok := c.Get("b4")
		assert.False(t, ok)

		assert.True(t, c.Set("b4", c.Generation("b4"), summaryFor(t, 8)))
		got, ok := c.Get("b4")
		require.True(t, ok)
		assert.True(t, got.GrandTotal.Equal(decimal.NewFromInt(96)))
	})

	t.Run("generations are per budget", func(t *testing.T) {
		gen := c.Generation("b5")
		c.Invalidate("b6")

		assert.True(t, c.Set("b5", gen, summaryFor(t, 1)))
	})
}

func TestNilSummaryCache(t *testing.T) {
	var c *SummaryCache

	assert.False(t, c.Set("b1", c.Generation("b1"), budget.Summary{}))
	c.Invalidate("b1")
	_, ok := c.Get("b1")
	assert.False(t, ok)
	c.Close()
}
