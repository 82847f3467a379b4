package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butik-backend/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func testProduct(id uint, price string) *models.Product {
	return &models.Product{
		ID:    id,
		Name:  "Test Ürün",
		Price: decimal.RequireFromString(price),
		Stock: 100,
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "7", Key(7, nil))
	assert.Equal(t, "7", Key(7, uintPtr(0)))
	assert.Equal(t, "7-3", Key(7, uintPtr(3)))
}

func TestAddSnapshotsPriceAndAccumulates(t *testing.T) {
	c := New()
	p := testProduct(1, "10.00")

	c.Add(p, nil, 2)

	// Ürün fiyatı sonradan değişse bile satırdaki kopya sabit kalır
	p.Price = decimal.RequireFromString("99.00")
	c.Add(p, nil, 1)

	line := c.Lines["1"]
	require.NotNil(t, line)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, line.Subtotal.Equal(decimal.RequireFromString("30.00")))
}

func TestAddSameProductDifferentVariantsAreSeparateLines(t *testing.T) {
	c := New()
	p := testProduct(1, "5.50")
	v1 := &models.Variant{ID: 10, ProductID: 1, Name: "Kırmızı"}
	v2 := &models.Variant{ID: 11, ProductID: 1, Name: "Mavi"}

	c.Add(p, v1, 1)
	c.Add(p, v2, 2)
	c.Add(p, nil, 1)

	assert.Len(t, c.Lines, 3)
	assert.Contains(t, c.Lines, "1-10")
	assert.Contains(t, c.Lines, "1-11")
	assert.Contains(t, c.Lines, "1")
	assert.Equal(t, "Kırmızı", c.Lines["1-10"].VariantName)
}

func TestTotalScenarioRounding(t *testing.T) {
	// $10.00 × 3 = tam olarak 30.00; ekleme ve listeleme aynı sonucu verir
	c := New()
	c.Add(testProduct(1, "10.00"), nil, 3)

	assert.True(t, c.Total().Equal(decimal.RequireFromString("30.00")))
	items := c.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].Subtotal.Equal(decimal.RequireFromString("30.00")))
}

func TestSingleRoundingPath(t *testing.T) {
	// 3 × 3.33 = 9.99: ara toplam tek kural ile (çarp, sonra yuvarla) hesaplanır
	c := New()
	c.Add(testProduct(1, "3.33"), nil, 3)

	assert.True(t, c.Total().Equal(decimal.RequireFromString("9.99")))

	// Items() ile görünen değer Add anındaki değerle birebir aynı
	assert.True(t, c.Items()[0].Subtotal.Equal(c.Lines["1"].Subtotal))
}

func TestSubtractRemovesBelowOne(t *testing.T) {
	c := New()
	c.Add(testProduct(1, "2.00"), nil, 2)

	c.Subtract(1, nil)
	assert.Equal(t, 1, c.Lines["1"].Quantity)

	c.Subtract(1, nil)
	assert.NotContains(t, c.Lines, "1")
	assert.True(t, c.IsEmpty())

	// Olmayan satır için sessizce no-op
	c.Subtract(1, nil)
	assert.True(t, c.IsEmpty())
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	c.Add(testProduct(1, "2.00"), nil, 1)
	c.Add(testProduct(2, "3.00"), nil, 1)

	c.Remove(1, nil)
	assert.NotContains(t, c.Lines, "1")
	assert.Len(t, c.Lines, 1)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
}

func TestItemCountSumsQuantities(t *testing.T) {
	c := New()
	c.Add(testProduct(1, "1.00"), nil, 3)
	c.Add(testProduct(2, "1.00"), nil, 2)

	assert.Equal(t, 5, c.ItemCount())
	assert.Len(t, c.Lines, 2)
}

func TestItemsSortedByKey(t *testing.T) {
	c := New()
	p := testProduct(2, "1.00")
	c.Add(p, &models.Variant{ID: 9, ProductID: 2, Name: "B"}, 1)
	c.Add(p, &models.Variant{ID: 3, ProductID: 2, Name: "A"}, 1)
	c.Add(testProduct(1, "1.00"), nil, 1)

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, uint(1), items[0].ProductID)
	assert.Equal(t, "A", items[1].VariantName)
	assert.Equal(t, "B", items[2].VariantName)
}

func TestJSONRoundTrip(t *testing.T) {
	c := New()
	c.Add(testProduct(1, "12.34"), &models.Variant{ID: 5, ProductID: 1, Name: "Ton 5"}, 2)

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var restored Cart
	require.NoError(t, json.Unmarshal(raw, &restored))

	line := restored.Lines["1-5"]
	require.NotNil(t, line)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("12.34")))
	assert.True(t, restored.Total().Equal(c.Total()))
}
