// Package sheet turns inventory spreadsheets into header-keyed rows and
// reads typed fields out of them through ordered header aliases.
package sheet

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Row maps a normalized header to its trimmed cell value.
type Row map[string]string

// Field is an ordered list of header aliases for one logical column. The
// first alias holding a non-blank value wins.
type Field []string

var (
	FieldISBN           = Field{"ISBN", "isbn", "isbn13"}
	FieldTitle          = Field{"제목", "title"}
	FieldAuthor         = Field{"저자", "지은이", "author", "authors"}
	FieldPublisher      = Field{"출판사", "publisher", "pub"}
	FieldPubDate        = Field{"출간일", "발행일", "pubDate", "published"}
	FieldListPrice      = Field{"정가", "listPrice", "listprice", "price"}
	FieldSellPrice      = Field{"판매가", "priceSell", "sell"}
	FieldBuyPrice       = Field{"매입가", "buyPrice", "buy"}
	FieldIntakeDate     = Field{"매입일", "입고일", "intakeDate", "buyDate"}
	FieldGrade          = Field{"등급", "grade"}
	FieldCover          = Field{"표지 URL", "표지", "cover", "image"}
	FieldTOC            = Field{"목차", "toc"}
	FieldIntro          = Field{"소개", "intro"}
	FieldRecommendation = Field{"추천사", "recommendation", "comment", "한줄평"}
	FieldSeller         = Field{"판매자", "seller", "nickname", "sellerName"}
	FieldQuote          = Field{"첫문장", "문구", "명언", "한줄평"}
)

var (
	whitespace   = regexp.MustCompile(`\s+`)
	numberStrip  = regexp.MustCompile(`[^0-9.\-]`)
	authorPrefix = regexp.MustCompile(`^(저자|지은이)\s*[:：]\s*`)
)

// NormalizeHeader removes a byte order mark, all whitespace and parentheses,
// so "표지 URL" and "표지URL" address the same column.
func NormalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\uFEFF", "")
	h = whitespace.ReplaceAllString(h, "")
	h = strings.NewReplacer("(", "", ")", "").Replace(h)
	return strings.TrimSpace(h)
}

// Pick returns the trimmed value of the first alias with a non-blank value,
// or "".
func (r Row) Pick(f Field) string {
	for _, alias := range f {
		v, ok := r[alias]
		if !ok {
			v = r[NormalizeHeader(alias)]
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Number reads a numeric field. Every character other than digits, '.' and
// '-' is dropped before parsing; anything unparseable is 0. The result is
// rounded to a whole unit and may be negative.
func (r Row) Number(f Field) int64 {
	return ParseNumber(r.Pick(f))
}

// ParseNumber is the parsing half of Row.Number.
func ParseNumber(s string) int64 {
	cleaned := numberStrip.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return d.Round(0).IntPart()
}

// StripAuthorPrefix removes a leading "저자:" or "지은이:" label.
func StripAuthorPrefix(s string) string {
	return strings.TrimSpace(authorPrefix.ReplaceAllString(strings.TrimSpace(s), ""))
}

// NormalizeISBN keeps digits and X, upper-cased.
func NormalizeISBN(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == 'x' || c == 'X':
			b.WriteRune('X')
		}
	}
	return b.String()
}
