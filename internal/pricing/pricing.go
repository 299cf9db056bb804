// Package pricing derives shelf prices from raw inventory figures: the
// stale-stock discount, the rounded final sell price, the member pass price
// and the advisory grade/age price policy.
package pricing

import (
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var (
	one = decimal.NewFromInt(1)
	ten = decimal.NewFromInt(10)

	passMarkup = decimal.RequireFromString("1.2")

	RateNone   = decimal.Zero
	RateSix    = decimal.RequireFromString("0.1")
	RateTwelve = decimal.RequireFromString("0.2")
)

// MonthsElapsed counts calendar months between intake and now, ignoring the
// day of month. Intake on Jan 31 and now on Feb 1 is one month.
func MonthsElapsed(intake, now time.Time) int {
	return (now.Year()-intake.Year())*12 + int(now.Month()) - int(intake.Month())
}

// StaleDiscountRate returns 0.2 for stock held 12 months or more, 0.1 for 6
// months or more, and 0 otherwise. An unparseable intake date is 0.
func StaleDiscountRate(intake string, now time.Time) decimal.Decimal {
	t, ok := ParseDate(intake)
	if !ok {
		return RateNone
	}

	switch months := MonthsElapsed(t, now); {
	case months >= 12:
		return RateTwelve
	case months >= 6:
		return RateSix
	default:
		return RateNone
	}
}

// FinalSellPrice applies rate to the nominal sell price and rounds to the
// nearest 10. Non-positive prices yield 0.
func FinalSellPrice(nominal int64, rate decimal.Decimal) int64 {
	if nominal <= 0 {
		return 0
	}
	return roundToTen(decimal.NewFromInt(nominal).Mul(one.Sub(rate)))
}

// PassPrice is the member price derived from the purchase price: buy × 1.2
// rounded to the nearest 10. It is nil, not zero, when buy is not positive.
func PassPrice(buy int64) *int64 {
	if buy <= 0 {
		return nil
	}
	p := roundToTen(decimal.NewFromInt(buy).Mul(passMarkup))
	return &p
}

// ShowPassPrice reports whether a pass price should be displayed next to
// sell. The two are derived independently and can cross.
func ShowPassPrice(pass *int64, sell int64) bool {
	return pass != nil && *pass <= sell
}

// Clamp maps negative figures read from malformed cells to 0.
func Clamp(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func roundToTen(d decimal.Decimal) int64 {
	return d.Div(ten).Round(0).Mul(ten).IntPart()
}

var datePattern = regexp.MustCompile(`^\s*(\d{4})(?:\D{0,3}(\d{1,2}))?(?:\D{1,3}(\d{1,2}))?`)

// ParseDate reads the year, and month and day when present, from the date
// styles found in inventory sheets: 2024-03-05, 2024.3.5, 2024/03,
// 20240305, "2024년 3월 5일" and a bare 2024.
func ParseDate(s string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, day := 1, 1

	if m[2] != "" {
		month, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		day, _ = strconv.Atoi(m[3])
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
