package catalog

import (
	"time"

	"github.com/bookmook/storefront/internal/pricing"
)

// Variant is the in-stock summary of one grade of one ISBN.
type Variant struct {
	Grade     pricing.Grade `json:"grade"`
	Count     int           `json:"count"`
	PriceSell int64         `json:"priceSell"`
}

// Book is the detail view of one ISBN. Descriptive fields come from the
// first row carrying that ISBN.
type Book struct {
	ISBN          string                   `json:"isbn"`
	Title         string                   `json:"title"`
	Author        string                   `json:"author,omitempty"`
	Publisher     string                   `json:"publisher,omitempty"`
	PubDate       string                   `json:"pubDate,omitempty"`
	CoverURL      string                   `json:"coverUrl"`
	TOC           string                   `json:"toc,omitempty"`
	Intro         string                   `json:"intro,omitempty"`
	ListPrice     int64                    `json:"listPrice"`
	PriceSell     int64                    `json:"priceSell"`
	PassPrice     *int64                   `json:"passPrice,omitempty"`
	ShowPassPrice bool                     `json:"showPassPrice"`
	SoldOut       bool                     `json:"soldOut"`
	Variants      []Variant                `json:"variants"`
	Recommended   []pricing.Recommendation `json:"recommended"`
}

// Assemble groups records by ISBN, in order of first appearance. Records
// without an ISBN are skipped.
func Assemble(records []BookRecord, now time.Time) []Book {
	order := make([]string, 0)
	groups := make(map[string][]BookRecord)
	for _, rec := range records {
		if rec.ISBN == "" {
			continue
		}
		if _, seen := groups[rec.ISBN]; !seen {
			order = append(order, rec.ISBN)
		}
		groups[rec.ISBN] = append(groups[rec.ISBN], rec)
	}

	books := make([]Book, 0, len(order))
	for _, isbn := range order {
		books = append(books, assembleGroup(groups[isbn], now))
	}
	return books
}

// AssembleOne builds the Book for isbn, which must already be normalized.
func AssembleOne(records []BookRecord, isbn string, now time.Time) (Book, bool) {
	if isbn == "" {
		return Book{}, false
	}

	var same []BookRecord
	for _, rec := range records {
		if rec.ISBN == isbn {
			same = append(same, rec)
		}
	}
	if len(same) == 0 {
		return Book{}, false
	}

	return assembleGroup(same, now), true
}

func assembleGroup(same []BookRecord, now time.Time) Book {
	first := same[0]

	type bucket struct {
		count   int
		minSell int64
	}
	buckets := make(map[pricing.Grade]*bucket, len(pricing.Grades))
	for _, rec := range same {
		g, ok := pricing.ParseGrade(rec.Grade)
		if !ok {
			continue
		}
		b := buckets[g]
		if b == nil {
			b = &bucket{}
			buckets[g] = b
		}
		b.count++
		if rec.SellPrice > 0 && (b.minSell == 0 || rec.SellPrice < b.minSell) {
			b.minSell = rec.SellPrice
		}
	}

	variants := make([]Variant, 0, len(pricing.Grades))
	for _, g := range pricing.Grades {
		v := Variant{Grade: g, PriceSell: first.ListPrice}
		if b := buckets[g]; b != nil {
			v.Count = b.count
			if b.minSell > 0 {
				v.PriceSell = b.minSell
			}
		}
		variants = append(variants, v)
	}

	priceSell, soldOut := firstAvailable(variants, first.ListPrice)

	pubDate, _ := pricing.ParseDate(first.PubDate)

	return Book{
		ISBN:          first.ISBN,
		Title:         first.Title,
		Author:        first.Author,
		Publisher:     first.Publisher,
		PubDate:       first.PubDate,
		CoverURL:      first.CoverURL,
		TOC:           first.TOC,
		Intro:         first.Intro,
		ListPrice:     first.ListPrice,
		PriceSell:     priceSell,
		PassPrice:     first.PassPrice,
		ShowPassPrice: pricing.ShowPassPrice(first.PassPrice, priceSell),
		SoldOut:       soldOut,
		Variants:      variants,
		Recommended:   pricing.RecommendAll(first.ListPrice, pubDate, now),
	}
}

// firstAvailable returns the price of the first grade in stock, in A, B, C
// order, falling back to the list price when nothing is in stock.
func firstAvailable(variants []Variant, listPrice int64) (price int64, soldOut bool) {
	for _, v := range variants {
		if v.Count > 0 {
			if v.PriceSell > 0 {
				return v.PriceSell, false
			}
			return listPrice, false
		}
	}
	return listPrice, true
}
