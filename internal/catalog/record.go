// Package catalog builds the storefront views of the inventory sheet:
// priced book records, per-ISBN grade variants, search, deals and quote
// lines.
package catalog

import (
	"strings"
	"time"

	"github.com/bookmook/storefront/internal/pricing"
	"github.com/bookmook/storefront/internal/sheet"
)

// UntitledBook is shown for rows whose title cell is blank.
const UntitledBook = "(제목 없음)"

// BookRecord is one inventory row after normalization and pricing. It is
// derived on every read and never stored. SellPrice is always the price
// after the stale-stock discount; ListPrice is only a reference.
type BookRecord struct {
	ISBN              string  `json:"isbn"`
	Title             string  `json:"title"`
	Author            string  `json:"author,omitempty"`
	Publisher         string  `json:"publisher,omitempty"`
	PubDate           string  `json:"pubDate,omitempty"`
	CoverURL          string  `json:"coverUrl"`
	Grade             string  `json:"grade"`
	ListPrice         int64   `json:"listPrice"`
	SellPrice         int64   `json:"sellPrice"`
	BuyPrice          int64   `json:"-"`
	PassPrice         *int64  `json:"passPrice,omitempty"`
	ShowPassPrice     bool    `json:"showPassPrice"`
	StaleDiscountRate float64 `json:"staleDiscountRate"`
	Recommendation    string  `json:"recommendation,omitempty"`
	SellerName        string  `json:"sellerName,omitempty"`
	TOC               string  `json:"-"`
	Intro             string  `json:"-"`
}

// FromRow maps one sheet row into a BookRecord priced as of now.
func FromRow(row sheet.Row, now time.Time) BookRecord {
	listPrice := pricing.Clamp(row.Number(sheet.FieldListPrice))
	nominalSell := pricing.Clamp(row.Number(sheet.FieldSellPrice))
	buyPrice := pricing.Clamp(row.Number(sheet.FieldBuyPrice))

	rate := pricing.StaleDiscountRate(row.Pick(sheet.FieldIntakeDate), now)
	sellPrice := pricing.FinalSellPrice(nominalSell, rate)
	passPrice := pricing.PassPrice(buyPrice)

	title := row.Pick(sheet.FieldTitle)
	if title == "" {
		title = UntitledBook
	}

	grade := strings.ToUpper(row.Pick(sheet.FieldGrade))
	if grade == "" {
		grade = string(pricing.DefaultGrade)
	}

	return BookRecord{
		ISBN:              sheet.NormalizeISBN(row.Pick(sheet.FieldISBN)),
		Title:             title,
		Author:            sheet.StripAuthorPrefix(row.Pick(sheet.FieldAuthor)),
		Publisher:         row.Pick(sheet.FieldPublisher),
		PubDate:           row.Pick(sheet.FieldPubDate),
		CoverURL:          sheet.NormalizeCover(row.Pick(sheet.FieldCover)),
		Grade:             grade,
		ListPrice:         listPrice,
		SellPrice:         sellPrice,
		BuyPrice:          buyPrice,
		PassPrice:         passPrice,
		ShowPassPrice:     pricing.ShowPassPrice(passPrice, sellPrice),
		StaleDiscountRate: rate.InexactFloat64(),
		Recommendation:    row.Pick(sheet.FieldRecommendation),
		SellerName:        row.Pick(sheet.FieldSeller),
		TOC:               row.Pick(sheet.FieldTOC),
		Intro:             row.Pick(sheet.FieldIntro),
	}
}

// FromRows maps rows in order.
func FromRows(rows []sheet.Row, now time.Time) []BookRecord {
	out := make([]BookRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row, now))
	}
	return out
}
