package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodiedelight/internal/models"
)

func item(id, price string, rating float64) models.MenuItem {
	return models.MenuItem{
		ID:     id,
		Name:   "item " + id,
		Price:  decimal.RequireFromString(price),
		Rating: rating,
	}
}

var (
	itemA = item("1", "10", 4.8)
	itemB = item("2", "5", 4.2)
)

func TestAdd_SameItemTwice(t *testing.T) {
	c := New()
	c.Add(itemA)
	c.Add(itemA)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "1", lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "20", c.TotalPrice().String())
	assert.Equal(t, 2, c.TotalItemCount())
}

func TestAdd_KeepsInsertionOrder(t *testing.T) {
	c := New()
	c.Add(itemB)
	c.Add(itemA)
	c.Add(itemB)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "2", lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "1", lines[1].ID)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		quantity  int
		wantErr   error
		wantLines int
		wantQty   int
		wantTotal string
	}{
		{"decrease", "1", 1, nil, 1, 1, "10"},
		{"increase", "1", 5, nil, 1, 5, "50"},
		{"zero removes", "1", 0, nil, 0, 0, "0"},
		{"unknown id is ignored", "9", 3, nil, 1, 2, "20"},
		{"unknown id zero is ignored", "9", 0, nil, 1, 2, "20"},
		{"negative rejected", "1", -1, ErrInvalidQuantity, 1, 2, "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Add(itemA)
			c.Add(itemA)

			err := c.UpdateQuantity(tt.id, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantLines, c.Len())
			assert.Equal(t, tt.wantQty, c.Quantity("1"))
			assert.Equal(t, tt.wantTotal, c.TotalPrice().String())
		})
	}
}

func TestUpdateQuantity_ZeroLeavesNoLine(t *testing.T) {
	c := New()
	c.Add(itemA)
	c.Add(itemB)

	require.NoError(t, c.UpdateQuantity("1", 0))

	assert.False(t, c.Contains("1"))
	for _, l := range c.Lines() {
		assert.NotEqual(t, "1", l.ID)
	}
}

func TestRemoveAndReset(t *testing.T) {
	c := New()
	c.Add(itemA)
	c.Add(itemB)

	c.Remove("2")
	assert.Equal(t, 1, c.Len())
	c.Remove("2")
	assert.Equal(t, 1, c.Len())

	c.Reset()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.TotalPrice().IsZero())
	assert.Equal(t, 0, c.TotalItemCount())
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := New()
	c.Add(itemA)

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.Quantity("1"))
}

func TestTotals_MatchReferenceAfterRandomMutations(t *testing.T) {
	catalog := []models.MenuItem{
		item("1", "14.99", 4.8),
		item("2", "12.99", 4.7),
		item("3", "9.99", 4.5),
		item("4", "0.10", 4.9),
	}
	rng := rand.New(rand.NewSource(7))
	c := New()
	added := map[string]int{}

	for i := 0; i < 500; i++ {
		it := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(3) {
		case 0, 1:
			c.Add(it)
			added[it.ID]++
		case 2:
			q := rng.Intn(4)
			require.NoError(t, c.UpdateQuantity(it.ID, q))
			if added[it.ID] > 0 {
				added[it.ID] = q
			}
		}

		wantTotal := decimal.Zero
		wantCount := 0
		for _, it := range catalog {
			q := added[it.ID]
			assert.Equal(t, q, c.Quantity(it.ID))
			wantTotal = wantTotal.Add(it.Price.Mul(decimal.NewFromInt(int64(q))))
			wantCount += q
		}
		require.True(t, wantTotal.Equal(c.TotalPrice()), "step %d: want %s got %s", i, wantTotal, c.TotalPrice())
		require.Equal(t, wantCount, c.TotalItemCount())
	}
}

func TestAdd_CountEqualsNumberOfAdds(t *testing.T) {
	c := New()
	adds := map[string]int{"1": 3, "2": 5}
	for i := 0; i < adds["1"]; i++ {
		c.Add(itemA)
	}
	for i := 0; i < adds["2"]; i++ {
		c.Add(itemB)
	}

	assert.Equal(t, 3, c.Quantity("1"))
	assert.Equal(t, 5, c.Quantity("2"))
	assert.Equal(t, 8, c.TotalItemCount())
}

func TestSnapshot(t *testing.T) {
	c := New()
	a := itemA
	a.Image = "https://img/1.jpg"
	c.Add(a)
	c.Add(a)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, models.OrderLine{
		ID:       "1",
		Name:     "item 1",
		Price:    a.Price,
		Quantity: 2,
		Image:    "https://img/1.jpg",
	}, snap[0])
}
