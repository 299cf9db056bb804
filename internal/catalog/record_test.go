package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmook/storefront/internal/sheet"
)

var fixedNow = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

func TestFromRow_StaleRowEndToEnd(t *testing.T) {
	row := sheet.Row{
		"ISBN":  "978-89-364-3412-0",
		"제목":    "소년이 온다",
		"저자":    "저자: 한강",
		"정가":    "20,000",
		"판매가":   "15000",
		"매입가":   "7000원",
		"매입일":   "2025-02-10",
		"표지URL": "https://drive.google.com/open?id=cover1",
		"판매자":   "책방지기",
	}

	rec := FromRow(row, fixedNow)

	assert.Equal(t, "9788936434120", rec.ISBN)
	assert.Equal(t, "한강", rec.Author)
	assert.Equal(t, int64(20000), rec.ListPrice)
	assert.InDelta(t, 0.2, rec.StaleDiscountRate, 1e-9)
	assert.Equal(t, int64(12000), rec.SellPrice)
	require.NotNil(t, rec.PassPrice)
	assert.Equal(t, int64(8400), *rec.PassPrice)
	assert.True(t, rec.ShowPassPrice)
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=cover1", rec.CoverURL)
	assert.Equal(t, "B", rec.Grade, "blank grade defaults to B")
	assert.Equal(t, "책방지기", rec.SellerName)
}

func TestFromRow_Degrades(t *testing.T) {
	rec := FromRow(sheet.Row{"정가": "-3000", "판매가": "n/a"}, fixedNow)

	assert.Equal(t, UntitledBook, rec.Title)
	assert.Empty(t, rec.ISBN)
	assert.Equal(t, int64(0), rec.ListPrice, "negative clamped")
	assert.Equal(t, int64(0), rec.SellPrice)
	assert.Nil(t, rec.PassPrice)
	assert.False(t, rec.ShowPassPrice)
	assert.Zero(t, rec.StaleDiscountRate)
	assert.Equal(t, sheet.FallbackCover, rec.CoverURL)
}

func TestFromRow_PassPriceAboveSellIsHidden(t *testing.T) {
	rec := FromRow(sheet.Row{"판매가": "8000", "매입가": "7000"}, fixedNow)

	require.NotNil(t, rec.PassPrice)
	assert.Equal(t, int64(8400), *rec.PassPrice)
	assert.False(t, rec.ShowPassPrice)
}
