package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

var monthNames = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

var weekdayHeaders = []string{"Pzt", "Sal", "Çar", "Per", "Cum", "Cmt", "Paz"}

const cellWidth = 9

var (
	tileStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2).
			Width(22)
	todayCellStyle = lipgloss.NewStyle().Width(cellWidth).Bold(true).Foreground(lipgloss.Color("205"))
	cellStyle      = lipgloss.NewStyle().Width(cellWidth)
)

// DashboardModel shows the home tiles and a month calendar.
type DashboardModel struct {
	CommonModel
	svc *scheduling.Service
	now func() time.Time

	year  int
	month time.Month

	dash     *scheduling.Dashboard
	calendar *scheduling.Month
	err      error
	loading  bool
}

func NewDashboardModel(svc *scheduling.Service) DashboardModel {
	now := time.Now().In(svc.Location())

	return DashboardModel{
		svc:     svc,
		now:     time.Now,
		year:    now.Year(),
		month:   now.Month(),
		loading: true,
	}
}

func (m DashboardModel) Title() string { return "Ana sayfa" }

func (m DashboardModel) ShortHelp() string {
	return "←/→: ay değiştir | .: bu ay | r: yenile | Esc: geri"
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadDashboardCmd(), m.loadCalendarCmd())
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.loading = false
		m.dash = msg.dash

		return m, nil

	case calendarLoadedMsg:
		if msg.month != nil && (msg.month.Year != m.year || msg.month.Month != m.month) {
			return m, nil // stale page
		}

		m.err = msg.err
		if msg.err == nil {
			m.calendar = msg.month
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.year, m.month = shiftMonth(m.year, m.month, -1)
			return m, m.loadCalendarCmd()
		case "right", "l":
			m.year, m.month = shiftMonth(m.year, m.month, 1)
			return m, m.loadCalendarCmd()
		case ".":
			now := m.now().In(m.svc.Location())
			m.year, m.month = now.Year(), now.Month()

			return m, m.loadCalendarCmd()
		case "r":
			m.loading = true
			return m, tea.Batch(m.loadDashboardCmd(), m.loadCalendarCmd())
		}
	}

	return m, nil
}

func shiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

func (m DashboardModel) View() string {
	if m.loading && m.dash == nil {
		return lipgloss.NewStyle().Padding(2).Render("Yükleniyor...")
	}

	sections := []string{m.tilesView()}

	if m.dash != nil {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			m.calendarView(),
			"  ",
			lipgloss.JoinVertical(lipgloss.Left,
				apptListView("Bugün", m.dash.Today, m.svc.Location()),
				"",
				apptListView("Yaklaşan", m.dash.Upcoming, m.svc.Location()),
			),
		))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m DashboardModel) tilesView() string {
	if m.dash == nil {
		return ""
	}

	tile := func(label, value string) string {
		return tileStyle.Render(faintStyle.Render(label) + "\n" + lipgloss.NewStyle().Bold(true).Render(value))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Bugünkü randevular", fmt.Sprint(m.dash.TodayCount)),
		tile("Bu hafta", fmt.Sprint(m.dash.WeekCount)),
		tile("Aylık gelir", FormatAmount(m.dash.MonthRevenue)),
		tile("Aktif danışan", fmt.Sprint(m.dash.ActiveClients)),
	)
}

// calendarView draws a Monday-first month grid. Each cell shows the day and
// one coloured dot per appointment, in the psychologist's colour.
func (m DashboardModel) calendarView() string {
	var b strings.Builder

	title := fmt.Sprintf("◀ %s %d ▶", monthNames[m.month-1], m.year)
	b.WriteString(lipgloss.NewStyle().Bold(true).Width(cellWidth*7).Align(lipgloss.Center).Render(title))
	b.WriteString("\n")

	for _, h := range weekdayHeaders {
		b.WriteString(faintStyle.Width(cellWidth).Render(h))
	}

	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Hata: %v", m.err)))
		return boxStyle.Render(b.String())
	}

	if m.calendar == nil {
		return boxStyle.Render(b.String())
	}

	today := pipeline.DateIn(m.now().In(m.svc.Location()), m.svc.Location())

	col := 0

	for ; col < m.calendar.Leading; col++ {
		b.WriteString(cellStyle.Render(""))
	}

	for _, day := range m.calendar.Days {
		cell := fmt.Sprintf("%2d %s", day.Date.Day(), dots(day.Appointments))

		style := cellStyle
		if pipeline.SameDay(day.Date, today) {
			style = todayCellStyle
		}

		b.WriteString(style.Render(cell))

		col++
		if col%7 == 0 {
			b.WriteString("\n")
		}
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func dots(appts []*scheduling.Appointment) string {
	const maxDots = 4

	var b strings.Builder

	for i, a := range appts {
		if i == maxDots {
			b.WriteString("+")
			break
		}

		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(a.PsychologistColor)).Render("•"))
	}

	return b.String()
}

func apptListView(title string, appts []*scheduling.Appointment, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n")

	if len(appts) == 0 {
		b.WriteString(faintStyle.Render("Randevu yok"))
		return boxStyle.Render(b.String())
	}

	for _, a := range appts {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(a.PsychologistColor)).Render("●")
		fmt.Fprintf(&b, "%s %s %s  %s\n", FormatDate(a.Date), a.Start(loc).Format("15:04"), dot, a.ClientName)
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// Messages

type dashboardLoadedMsg struct {
	dash *scheduling.Dashboard
}

type calendarLoadedMsg struct {
	month *scheduling.Month
	err   error
}

func (m DashboardModel) loadDashboardCmd() tea.Cmd {
	svc := m.svc
	now := m.now()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return dashboardLoadedMsg{dash: svc.Dashboard(ctx, now)}
	}
}

func (m DashboardModel) loadCalendarCmd() tea.Cmd {
	svc := m.svc
	year, month := m.year, m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cal, err := svc.Calendar(ctx, year, month)

		return calendarLoadedMsg{month: cal, err: err}
	}
}
