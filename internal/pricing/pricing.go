package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidPeriod is returned when the return date precedes the issue date.
var ErrInvalidPeriod = errors.New("pricing: return date before issue date")

// Quote is the price snapshot stored on a contract.
type Quote struct {
	Days        int
	DailyPrice  decimal.Decimal
	TotalAmount decimal.Decimal
}

// Calculate prices a rental period inclusively: a same-day return is one day.
func Calculate(dailyPrice decimal.Decimal, issue, ret time.Time) (Quote, error) {
	days := Days(issue, ret)
	if days <= 0 {
		return Quote{}, ErrInvalidPeriod
	}
	return Quote{
		Days:        days,
		DailyPrice:  dailyPrice,
		TotalAmount: dailyPrice.Mul(decimal.NewFromInt(int64(days))).Round(2),
	}, nil
}

const secondsPerDay = 24 * 60 * 60

// Days counts calendar days between two dates inclusive of both ends. Unix seconds are
// used because time.Duration saturates for periods longer than about 292 years.
func Days(issue, ret time.Time) int {
	i := time.Date(issue.Year(), issue.Month(), issue.Day(), 0, 0, 0, 0, time.UTC)
	r := time.Date(ret.Year(), ret.Month(), ret.Day(), 0, 0, 0, 0, time.UTC)
	return int((r.Unix()-i.Unix())/secondsPerDay) + 1
}
