package view

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/praxis/internal/report"
)

const (
	dbTimeout  = 5 * time.Second
	dateLayout = "02.01.2006"
)

// FormatAmount formats kuruş as lira, e.g. "1.234,56 ₺".
func FormatAmount(kurus int64) string {
	return report.Lira(kurus)
}

// FormatDate formats a calendar day as DD.MM.YYYY.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "…"
	}

	return t.Format(dateLayout)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
