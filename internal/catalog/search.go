package catalog

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bookmook/storefront/internal/sheet"
)

// Default result sizes for the list endpoints.
const (
	DefaultSearchLimit = 48
	DefaultRecentLimit = 100
	DefaultDealsLimit  = 48
	DefaultLinesLimit  = 24
)

// normText lower-cases s and drops all whitespace.
func normText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Search returns up to limit records matching query, in source order. The
// query matches case- and whitespace-insensitively against title, author
// and publisher, or as a digits-only substring of the ISBN. A blank query
// matches nothing.
func Search(records []BookRecord, query string, limit int) []BookRecord {
	qText := normText(query)
	qISBN := sheet.NormalizeISBN(query)
	if qText == "" || limit <= 0 {
		return []BookRecord{}
	}

	out := make([]BookRecord, 0)
	for _, rec := range records {
		if len(out) >= limit {
			break
		}

		bundle := normText(rec.Title) + "|" + normText(rec.Author) + "|" + normText(rec.Publisher)
		if strings.Contains(bundle, qText) || (qISBN != "" && strings.Contains(rec.ISBN, qISBN)) {
			out = append(out, rec)
		}
	}
	return out
}

// IsDeal reports a sell price at least 25% under a known list price.
func IsDeal(rec BookRecord) bool {
	if rec.ListPrice <= 0 || rec.SellPrice <= 0 {
		return false
	}
	return (rec.ListPrice-rec.SellPrice)*4 >= rec.ListPrice
}

// Deals returns up to limit deal records in source order.
func Deals(records []BookRecord, limit int) []BookRecord {
	out := make([]BookRecord, 0)
	for _, rec := range records {
		if len(out) >= limit {
			break
		}
		if IsDeal(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Recent returns the first limit records.
func Recent(records []BookRecord, limit int) []BookRecord {
	if limit < 0 {
		limit = 0
	}
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

// BookLine is a quotable line from a book, with its ISBN when known.
type BookLine struct {
	Text string `json:"text"`
	ISBN string `json:"isbn,omitempty"`
}

var (
	htmlTag   = regexp.MustCompile(`<[^>]*>`)
	lineBreak = regexp.MustCompile(`\r?\n`)
)

func cleanLine(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Lines collects up to limit quote lines from the quote columns. Multi-line
// cells yield one line per line break; lines shorter than two characters
// are dropped.
func Lines(rows []sheet.Row, limit int) []BookLine {
	out := make([]BookLine, 0)
	for _, row := range rows {
		if len(out) >= limit {
			break
		}

		quote := row.Pick(sheet.FieldQuote)
		if quote == "" {
			continue
		}
		isbn := sheet.NormalizeISBN(row.Pick(sheet.FieldISBN))

		for _, part := range lineBreak.Split(quote, -1) {
			if len(out) >= limit {
				break
			}
			text := cleanLine(part)
			if utf8.RuneCountInString(text) < 2 {
				continue
			}
			out = append(out, BookLine{Text: text, ISBN: isbn})
		}
	}
	return out
}
