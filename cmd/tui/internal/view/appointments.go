package view

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

type apptState int

const (
	apptStateTimeframe apptState = iota
	apptStateList
	apptStateEditing
)

func statusLabel(s scheduling.Status) string {
	switch s {
	case scheduling.StatusScheduled:
		return "Planlandı"
	case scheduling.StatusCompleted:
		return "Tamamlandı"
	case scheduling.StatusCancelled:
		return "İptal"
	case scheduling.StatusNoShow:
		return "Gelmedi"
	}

	return string(s)
}

// apptItem wraps an appointment to implement list.Item.
type apptItem struct {
	appt *scheduling.Appointment
	loc  *time.Location
}

func (i apptItem) Title() string {
	status := faintStyle.Render(fmt.Sprintf("[%s]", statusLabel(i.appt.Status)))
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(i.appt.PsychologistColor)).Render("●")

	return fmt.Sprintf("%s %s  %s  %s  %s",
		FormatDate(i.appt.Date),
		i.appt.Start(i.loc).Format("15:04"),
		dot,
		i.appt.ClientName,
		status,
	)
}

func (i apptItem) Description() string {
	desc := fmt.Sprintf("%s · %d dk · %s", i.appt.PsychologistName, i.appt.Duration, FormatAmount(i.appt.Fee))
	if i.appt.Description != "" {
		desc += " · " + i.appt.Description
	}

	return desc
}

func (i apptItem) FilterValue() string {
	return i.appt.ClientName + " " + i.appt.PsychologistName
}

// AppointmentsModel lists the appointments of a chosen period.
type AppointmentsModel struct {
	CommonModel
	svc *scheduling.Service

	state    apptState
	picker   TimeframePicker
	list     list.Model
	form     *huh.Form
	appts    []*scheduling.Appointment
	selected *scheduling.Appointment

	dates   *pipeline.DateRange
	loading bool
	status  string
}

func NewAppointmentsModel(svc *scheduling.Service) AppointmentsModel {
	l := list.New([]list.Item{}, apptItemDelegate{}, 0, 0)
	l.Title = "Randevular"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return AppointmentsModel{
		svc:    svc,
		picker: NewTimeframePicker(TimeframeToday, svc.Location()),
		list:   l,
	}
}

func (m AppointmentsModel) Title() string { return "Randevular" }

func (m AppointmentsModel) ShortHelp() string {
	switch m.state {
	case apptStateTimeframe:
		return "Esc: geri | Enter: seç"
	case apptStateList:
		return "Esc: geri | Enter: durum değiştir | /: ara"
	case apptStateEditing:
		return "Esc: vazgeç"
	}

	return ""
}

func (m AppointmentsModel) Init() tea.Cmd {
	return nil
}

func (m AppointmentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.dates = msg.Range
		m.list.Title = "Randevular · " + msg.Label
		m.loading = true
		m.state = apptStateList

		return m, m.loadCmd()

	case apptsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Hata: %v", msg.err)
			return m, nil
		}

		m.appts = msg.appts
		m.refreshListItems()

		m.status = ""
		if len(msg.appts) == 0 {
			m.status = "Bu dönemde randevu yok."
		}

		return m, nil

	case apptSavedMsg:
		m.state = apptStateList
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Kaydedilemedi: %v", msg.err)
			return m, nil
		}

		m.status = "Kaydedildi."

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)

		return m, nil
	}

	switch m.state {
	case apptStateTimeframe:
		return m.updateTimeframe(msg)
	case apptStateList:
		return m.updateList(msg)
	case apptStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m AppointmentsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
		return m, Back
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m AppointmentsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.Type {
		case tea.KeyEsc:
			if m.list.FilterState() == list.FilterApplied {
				break
			}

			m.state = apptStateTimeframe
			m.picker.Reset()

			return m, nil
		case tea.KeyEnter:
			return m.startEditing()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m AppointmentsModel) startEditing() (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(apptItem)
	if !ok {
		return m, nil
	}

	m.selected = item.appt
	status := item.appt.Status
	desc := item.appt.Description

	options := make([]huh.Option[scheduling.Status], 0, 4)
	for _, s := range []scheduling.Status{
		scheduling.StatusScheduled,
		scheduling.StatusCompleted,
		scheduling.StatusCancelled,
		scheduling.StatusNoShow,
	} {
		options = append(options, huh.NewOption(statusLabel(s), s))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[scheduling.Status]().
				Key("status").
				Title("Durum").
				Options(options...).
				Value(&status),

			huh.NewText().
				Key("description").
				Title("Not").
				Value(&desc),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = apptStateEditing

	return m, m.form.Init()
}

func (m AppointmentsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = apptStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m AppointmentsModel) View() string {
	switch m.state {
	case apptStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())

	case apptStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Randevular yükleniyor...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = faintStyle.Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case apptStateEditing:
		if m.form == nil || m.selected == nil {
			return ""
		}

		info := boxStyle.Render(apptItem{appt: m.selected, loc: m.svc.Location()}.Title() + "\n" +
			apptItem{appt: m.selected}.Description())

		return lipgloss.NewStyle().Padding(1).Render(info + "\n" + m.form.View())
	}

	return ""
}

func (m *AppointmentsModel) refreshListItems() {
	loc := m.svc.Location()

	items := make([]list.Item, len(m.appts))
	for i, a := range m.appts {
		items[i] = apptItem{appt: a, loc: loc}
	}

	m.list.SetItems(items)
}

// Messages

type apptsLoadedMsg struct {
	appts []*scheduling.Appointment
	err   error
}

func (m AppointmentsModel) loadCmd() tea.Cmd {
	svc := m.svc
	spec := pipeline.Spec{Dates: m.dates}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		appts, err := svc.ListAppointments(ctx, spec)

		return apptsLoadedMsg{appts: appts, err: err}
	}
}

type apptSavedMsg struct {
	err error
}

func (m AppointmentsModel) saveCmd() tea.Cmd {
	updated := *m.selected
	updated.Status, _ = m.form.Get("status").(scheduling.Status)
	updated.Description = m.form.GetString("description")
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return apptSavedMsg{err: svc.UpdateAppointment(ctx, &updated)}
	}
}

// apptItemDelegate renders items in the list.
type apptItemDelegate struct{}

func (d apptItemDelegate) Height() int                             { return 2 }
func (d apptItemDelegate) Spacing() int                            { return 0 }
func (d apptItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d apptItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(apptItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", faintStyle.Render(i.Description()))
}
