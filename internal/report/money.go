package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Lira renders an amount in kuruş the way Turkish readers write money:
// 123456 -> "1.234,56 ₺", -5000 -> "-50,00 ₺".
func Lira(kurus int64) string {
	whole, frac, _ := strings.Cut(decimal.New(kurus, -2).Abs().StringFixed(2), ".")

	var sb strings.Builder

	if kurus < 0 {
		sb.WriteByte('-')
	}

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte('.')
		}

		sb.WriteRune(r)
	}

	sb.WriteString(",")
	sb.WriteString(frac)
	sb.WriteString(" ₺")

	return sb.String()
}

// plainAmount is the signed, ungrouped form spreadsheets and the statement
// importer both read back: -1250000 -> "-12500,00".
func plainAmount(kurus int64) string {
	return strings.Replace(decimal.New(kurus, -2).StringFixed(2), ".", ",", 1)
}
