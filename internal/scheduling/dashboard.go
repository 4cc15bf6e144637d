package scheduling

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

const upcomingLimit = 5

// Dashboard holds the home page tiles. Cancelled appointments count nowhere.
type Dashboard struct {
	Today         []*Appointment
	TodayCount    int
	WeekCount     int
	MonthRevenue  int64
	ActiveClients int
	Psychologists []*Psychologist
	Upcoming      []*Appointment
}

// Dashboard recomputes the tiles for the local day of now. A failing reader
// is logged and treated as empty.
func (s *Service) Dashboard(ctx context.Context, now time.Time) *Dashboard {
	var (
		g             errgroup.Group
		appts         []*Appointment
		psychologists []*Psychologist
	)

	g.Go(func() error {
		appts = s.loadAppointments(ctx)
		return nil
	})

	g.Go(func() error {
		var err error

		psychologists, err = s.reader.ListPsychologists(ctx)
		if err != nil {
			slog.Error("failed to load psychologists", "error", err)

			psychologists = nil
		}

		return nil
	})

	_ = g.Wait()

	appts = slices.DeleteFunc(appts, func(a *Appointment) bool {
		return a.Status == StatusCancelled
	})
	s.sortByStart(appts)

	today := pipeline.DateIn(now.In(s.loc), s.loc)
	weekStart, weekEnd := pipeline.WeekBounds(today)
	monthStart, monthEnd := pipeline.MonthBounds(today)

	d := &Dashboard{
		Today:         pipeline.Filter(appts, dayRange(today, today)),
		Psychologists: psychologists,
	}
	d.TodayCount = len(d.Today)
	d.WeekCount = len(pipeline.Filter(appts, dayRange(weekStart, weekEnd)))

	month := pipeline.Filter(appts, dayRange(monthStart, monthEnd))
	d.MonthRevenue = pipeline.Total(month)

	clients := make(map[string]struct{}, len(month))
	for _, a := range month {
		clients[clientKey(a)] = struct{}{}
	}

	d.ActiveClients = len(clients)

	for _, a := range appts {
		if len(d.Upcoming) == upcomingLimit {
			break
		}

		if !a.Start(s.loc).Before(now) {
			d.Upcoming = append(d.Upcoming, a)
		}
	}

	return d
}

func (s *Service) loadAppointments(ctx context.Context) []*Appointment {
	appts, err := s.reader.ListAppointments(ctx)
	if err != nil {
		slog.Error("failed to load appointments", "error", err)
		return nil
	}

	return appts
}

// clientKey identifies an appointment's client. Sources that do not expose
// client ids fall back to the name.
func clientKey(a *Appointment) string {
	if a.ClientID != uuid.Nil {
		return a.ClientID.String()
	}

	return a.ClientName
}

func dayRange(from, to time.Time) pipeline.Spec {
	return pipeline.Spec{Dates: &pipeline.DateRange{From: &from, To: &to}}
}
