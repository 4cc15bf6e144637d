package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

type Day struct {
	Date         time.Time
	Appointments []*Appointment
}

// Month is a calendar page. Leading is the number of blank cells before the
// first day in a Monday-first grid.
type Month struct {
	Year    int
	Month   time.Month
	Leading int
	Days    []Day
}

// Day returns the bucket for day n of the month, or nil when n is out of range.
func (m *Month) Day(n int) *Day {
	if n < 1 || n > len(m.Days) {
		return nil
	}

	return &m.Days[n-1]
}

// Calendar buckets the month's appointments by their local calendar day.
// Cancelled appointments are kept so the calendar can show them struck out.
// A failing reader yields an empty month.
func (s *Service) Calendar(ctx context.Context, year int, month time.Month) (*Month, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrInvalid, month)
	}

	first, last := pipeline.MonthBounds(time.Date(year, month, 1, 0, 0, 0, 0, s.loc))

	m := &Month{
		Year:    year,
		Month:   month,
		Leading: (int(first.Weekday()) + 6) % 7,
		Days:    make([]Day, last.Day()),
	}

	for i := range m.Days {
		m.Days[i].Date = first.AddDate(0, 0, i)
	}

	appts := pipeline.Filter(s.loadAppointments(ctx), dayRange(first, last))
	s.sortByStart(appts)

	for _, a := range appts {
		day := &m.Days[a.Date.Day()-1]
		day.Appointments = append(day.Appointments, a)
	}

	return m, nil
}
