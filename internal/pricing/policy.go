package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Grade is the condition class of a copy.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Grades lists grades in display and availability order.
var Grades = []Grade{GradeA, GradeB, GradeC}

// DefaultGrade applies to rows that leave the grade cell blank.
const DefaultGrade = GradeB

// ParseGrade upper-cases s and reports whether it names a known grade.
// Blank input maps to DefaultGrade.
func ParseGrade(s string) (Grade, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultGrade, true
	}
	g := Grade(s)
	for _, known := range Grades {
		if g == known {
			return g, true
		}
	}
	return g, false
}

type gradeRates struct {
	sell decimal.Decimal
	buy  decimal.Decimal
}

var policy = map[Grade]gradeRates{
	GradeA: {sell: decimal.RequireFromString("0.65"), buy: decimal.RequireFromString("0.30")},
	GradeB: {sell: decimal.RequireFromString("0.55"), buy: decimal.RequireFromString("0.22")},
	GradeC: {sell: decimal.RequireFromString("0.40"), buy: decimal.RequireFromString("0.15")},
}

var (
	ageRecent = decimal.RequireFromString("1.2")
	ageMiddle = decimal.NewFromInt(1)
	ageOld    = decimal.RequireFromString("0.7")
)

// Recommendation is the advisory price pair for one grade.
type Recommendation struct {
	Grade Grade `json:"grade"`
	Sell  int64 `json:"sell"`
	Buy   int64 `json:"buy"`
}

// AgeMultiplier is 1.2 for books published within 2 years of now, 1.0
// within 5 years and 0.7 beyond. A zero pubDate counts as 1.0.
func AgeMultiplier(pubDate, now time.Time) decimal.Decimal {
	if pubDate.IsZero() {
		return ageMiddle
	}
	switch {
	case !now.After(pubDate.AddDate(2, 0, 0)):
		return ageRecent
	case !now.After(pubDate.AddDate(5, 0, 0)):
		return ageMiddle
	default:
		return ageOld
	}
}

// Recommend computes the advisory sell and buy prices for grade from the
// list price: the age multiplier is applied to the list price first, then
// the grade percentages, each result rounded to the nearest 10.
func Recommend(listPrice int64, grade Grade, pubDate, now time.Time) Recommendation {
	rec := Recommendation{Grade: grade}

	rates, ok := policy[grade]
	listPrice = Clamp(listPrice)
	if !ok || listPrice == 0 {
		return rec
	}

	base := decimal.NewFromInt(listPrice).Mul(AgeMultiplier(pubDate, now))
	rec.Sell = roundToTen(base.Mul(rates.sell))
	rec.Buy = roundToTen(base.Mul(rates.buy))
	return rec
}

// RecommendAll returns Recommend for every grade, in Grades order.
func RecommendAll(listPrice int64, pubDate, now time.Time) []Recommendation {
	out := make([]Recommendation, 0, len(Grades))
	for _, g := range Grades {
		out = append(out, Recommend(listPrice, g, pubDate, now))
	}
	return out
}
