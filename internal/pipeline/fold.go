package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
)

var turkishI = strings.NewReplacer("\u0307", "", "ı", "i")

// Fold returns s in the form used for case-insensitive matching. On top of
// Unicode case folding, all four Turkish i letters (I, ı, İ, i) fold to "i",
// so "IŞIK" matches "ışık" and an ASCII "KIRA" matches "kira".
func Fold(s string) string {
	return turkishI.Replace(cases.Fold().String(s))
}
