package statement

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// thousandsOnly matches amounts written with dots as the only separator and
// exactly three digits after each, e.g. "1.500" or "12.000.000".
var thousandsOnly = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+$`)

// ParseAmount parses a Turkish-formatted amount into kuruş.
// "1.234,56" -> 123456, "-588,74" -> -58874, "1.500" -> 150000, "12,5 TL" -> 1250.
func ParseAmount(s string) (int64, error) {
	clean := strings.NewReplacer(" ", "", " ", "", "TL", "", "TRY", "", "₺", "").Replace(s)

	// Some exports put the sign after the number.
	if strings.HasSuffix(clean, "-") {
		clean = "-" + strings.TrimSuffix(clean, "-")
	}

	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case thousandsOnly.MatchString(clean):
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Shift(2).Round(0).IntPart(), nil
}
