package view

import (
	"time"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

// Timeframe is a predefined or custom date range selection.
type Timeframe int

const (
	TimeframeToday Timeframe = iota
	TimeframeThisWeek
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeToday:
		return "Bugün"
	case TimeframeThisWeek:
		return "Bu hafta"
	case TimeframeLastWeek:
		return "Geçen hafta"
	case TimeframeThisMonth:
		return "Bu ay"
	case TimeframeLastMonth:
		return "Geçen ay"
	case TimeframeThisYear:
		return "Bu yıl"
	case TimeframeAll:
		return "Tümü"
	case TimeframeCustom:
		return "Özel aralık"
	}

	return "?"
}

// timeframeRange returns the closed day range tf covers around now, read as
// calendar days in loc. Weeks start on Monday. All and Custom yield nil.
func timeframeRange(tf Timeframe, now time.Time, loc *time.Location) *pipeline.DateRange {
	today := pipeline.DateIn(now.In(loc), loc)

	var from, to time.Time

	switch tf {
	case TimeframeToday:
		from, to = today, today
	case TimeframeThisWeek:
		from, to = pipeline.WeekBounds(today)
	case TimeframeLastWeek:
		from, to = pipeline.WeekBounds(today.AddDate(0, 0, -7))
	case TimeframeThisMonth:
		from, to = pipeline.MonthBounds(today)
	case TimeframeLastMonth:
		from, to = pipeline.MonthBounds(time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, loc))
	case TimeframeThisYear:
		from = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc)
		to = time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, loc)
	default:
		return nil
	}

	return &pipeline.DateRange{From: &from, To: &to}
}

// rangeLabel renders r as "01.07.2024 - 31.07.2024".
func rangeLabel(r *pipeline.DateRange) string {
	if r == nil {
		return TimeframeAll.String()
	}

	from, to := "…", "…"
	if r.From != nil {
		from = FormatDate(*r.From)
	}

	if r.To != nil {
		to = FormatDate(*r.To)
	}

	return from + " - " + to
}
