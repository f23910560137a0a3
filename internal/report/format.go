package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "02.01.2006"

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatMoney renders an amount as "1 500.00 ₽".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac + " ₽"
}
