package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmook/storefront/internal/pricing"
)

func rec(isbn, grade string, list, sell int64) BookRecord {
	return BookRecord{ISBN: isbn, Title: "t-" + isbn, Grade: grade, ListPrice: list, SellPrice: sell}
}

func TestAssembleOne_Variants(t *testing.T) {
	records := []BookRecord{
		rec("111", "B", 20000, 11000),
		rec("222", "A", 9000, 5000),
		rec("111", "B", 18000, 9000),
		rec("111", "C", 20000, 0),
		rec("111", "b", 20000, 0),
	}

	book, ok := AssembleOne(records, "111", fixedNow)
	require.True(t, ok)

	assert.Equal(t, "t-111", book.Title)
	assert.Equal(t, int64(20000), book.ListPrice, "first row is canonical")
	assert.Equal(t, []Variant{
		{Grade: pricing.GradeA, Count: 0, PriceSell: 20000},
		{Grade: pricing.GradeB, Count: 3, PriceSell: 9000},
		{Grade: pricing.GradeC, Count: 1, PriceSell: 20000},
	}, book.Variants)
	assert.Equal(t, int64(9000), book.PriceSell, "first grade in stock is B")
	assert.False(t, book.SoldOut)
	assert.Len(t, book.Recommended, 3)
}

func TestAssembleOne_FirstAvailablePrefersA(t *testing.T) {
	book, ok := AssembleOne([]BookRecord{
		rec("1", "C", 10000, 3000),
		rec("1", "A", 10000, 7000),
	}, "1", fixedNow)
	require.True(t, ok)
	assert.Equal(t, int64(7000), book.PriceSell)
}

func TestAssembleOne_SoldOutWhenNoKnownGrade(t *testing.T) {
	book, ok := AssembleOne([]BookRecord{rec("1", "상", 12000, 6000)}, "1", fixedNow)
	require.True(t, ok)

	assert.True(t, book.SoldOut)
	assert.Equal(t, int64(12000), book.PriceSell)
	for _, v := range book.Variants {
		assert.Zero(t, v.Count)
	}
}

func TestAssembleOne_Missing(t *testing.T) {
	_, ok := AssembleOne([]BookRecord{rec("1", "A", 0, 0)}, "2", fixedNow)
	assert.False(t, ok)

	_, ok = AssembleOne([]BookRecord{rec("", "A", 0, 0)}, "", fixedNow)
	assert.False(t, ok)
}

func TestAssemble_GroupsInFirstSeenOrder(t *testing.T) {
	books := Assemble([]BookRecord{
		rec("2", "A", 0, 100),
		rec("", "A", 0, 100),
		rec("1", "A", 0, 100),
		rec("2", "B", 0, 100),
	}, fixedNow)

	require.Len(t, books, 2)
	assert.Equal(t, "2", books[0].ISBN)
	assert.Equal(t, "1", books[1].ISBN)
	assert.Equal(t, 1, books[0].Variants[1].Count)
}

func TestAssembleOne_ShowPassPriceAgainstFirstAvailable(t *testing.T) {
	pass := int64(8400)
	r := rec("1", "A", 20000, 8000)
	r.PassPrice = &pass

	book, ok := AssembleOne([]BookRecord{r}, "1", fixedNow)
	require.True(t, ok)
	assert.False(t, book.ShowPassPrice)
}
