package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
	"github.com/MrJamesThe3rd/praxis/internal/report"
)

type ledgerState int

const (
	ledgerStateBrowse ledgerState = iota
	ledgerStateTimeframe
	ledgerStateEdit
)

const barWidth = 24

var (
	directionFilters = []finance.Direction{"", finance.DirectionIncome, finance.DirectionExpense}
	accountFilters   = []finance.Account{"", finance.AccountCash, finance.AccountBank}
	statusFilters    = []finance.Status{"", finance.StatusPaid, finance.StatusPending, finance.StatusCancelled}
)

// LedgerModel lists transactions with a side panel of totals and category bars.
type LedgerModel struct {
	CommonModel
	txService *finance.Service
	loc       *time.Location

	state  ledgerState
	table  table.Model
	picker TimeframePicker
	form   *huh.Form
	txs    []*finance.Transaction
	sheet  *finance.BalanceSheet

	directionIdx int
	accountIdx   int
	statusIdx    int
	dates        *pipeline.DateRange
	datesLabel   string

	loading bool
	err     error
	status  string
}

func NewLedgerModel(txSvc *finance.Service, loc *time.Location) LedgerModel {
	columns := []table.Column{
		{Title: "Tarih", Width: 10},
		{Title: "Tür", Width: 5},
		{Title: "Hesap", Width: 6},
		{Title: "Kategori", Width: 14},
		{Title: "Açıklama", Width: 30},
		{Title: "Kişi", Width: 16},
		{Title: "Tutar", Width: 14},
		{Title: "Durum", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := LedgerModel{
		txService: txSvc,
		loc:       loc,
		table:     t,
		picker:    NewTimeframePicker(TimeframeToday, loc),
		loading:   true,
	}

	m.dates = timeframeRange(TimeframeThisMonth, time.Now(), loc)
	m.datesLabel = TimeframeThisMonth.String()

	return m
}

func (m LedgerModel) Title() string { return "Gelir / Gider" }

func (m LedgerModel) ShortHelp() string {
	switch m.state {
	case ledgerStateEdit:
		return "Esc: vazgeç"
	case ledgerStateTimeframe:
		return "Esc: geri | Enter: seç"
	}

	return "Esc: geri | e: düzenle | x: sil | d: tür | a: hesap | s: durum | t: dönem | r: yenile"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m LedgerModel) filter() finance.ListFilter {
	return finance.ListFilter{
		Spec: pipeline.Spec{
			Type:  string(directionFilters[m.directionIdx]),
			Dates: m.dates,
		},
		Account: accountFilters[m.accountIdx],
		Status:  statusFilters[m.statusIdx],
	}
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ledgerLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.sheet = msg.sheet
		m.refreshTable()

		return m, nil

	case ledgerSavedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Kaydedilemedi: %v", msg.err)
		}

		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case TimeframeSelectedMsg:
		m.dates = msg.Range
		m.datesLabel = msg.Label
		m.state = ledgerStateBrowse
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil
	}

	switch m.state {
	case ledgerStateTimeframe:
		return m.updateTimeframe(msg)
	case ledgerStateEdit:
		return m.updateEdit(msg)
	}

	return m.updateBrowse(msg)
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m, m.deleteCmd()
		case "d":
			m.directionIdx = (m.directionIdx + 1) % len(directionFilters)
			return m, m.loadCmd()
		case "a":
			m.accountIdx = (m.accountIdx + 1) % len(accountFilters)
			return m, m.loadCmd()
		case "s":
			m.statusIdx = (m.statusIdx + 1) % len(statusFilters)
			return m, m.loadCmd()
		case "t":
			m.state = ledgerStateTimeframe
			m.picker.Reset()
			m.table.Blur()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
		m.state = ledgerStateBrowse
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m LedgerModel) selected() *finance.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m LedgerModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	desc, person, category, status := tx.Description, tx.Person, tx.Category, tx.Status

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Açıklama").
				Value(&desc),

			huh.NewInput().
				Key("person").
				Title("Kişi").
				Value(&person),

			huh.NewInput().
				Key("category").
				Title("Kategori").
				Value(&category).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("kategori boş olamaz")
					}

					return nil
				}),

			huh.NewSelect[finance.Status]().
				Key("status").
				Title("Durum").
				Options(statusOptions()...).
				Value(&status),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func statusOptions() []huh.Option[finance.Status] {
	return []huh.Option[finance.Status]{
		huh.NewOption("Ödendi", finance.StatusPaid),
		huh.NewOption("Bekliyor", finance.StatusPending),
		huh.NewOption("İptal", finance.StatusCancelled),
		huh.NewOption("Belirtilmemiş", finance.Status("")),
	}
}

func (m LedgerModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

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

func (m LedgerModel) View() string {
	if m.state == ledgerStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Hareketler yükleniyor...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Hata: %v", m.err)))
	}

	header := fmt.Sprintf(
		"[d] Tür: %s | [a] Hesap: %s | [s] Durum: %s | [t] Dönem: %s",
		activeStyle(directionFilterLabel(directionFilters[m.directionIdx])),
		activeStyle(accountFilterLabel(accountFilters[m.accountIdx])),
		activeStyle(statusFilterLabel(statusFilters[m.statusIdx])),
		activeStyle(m.datesLabel),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	side := m.sheetView()

	if m.state == ledgerStateEdit && m.form != nil {
		raw := ""
		if tx := m.selected(); tx != nil {
			raw = tx.RawDescription
		}

		side = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Hareketi düzenle\n\nEkstre: %s\n\n%s", raw, m.form.View()))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.JoinHorizontal(lipgloss.Top, tableView, " ", side),
	)

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// sheetView renders the period totals and one bar per category of the
// directions on screen.
func (m LedgerModel) sheetView() string {
	if m.sheet == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Gelir  %s\n", successStyle.Render(FormatAmount(m.sheet.Income)))
	fmt.Fprintf(&b, "Gider  %s\n", errorStyle.Render(FormatAmount(m.sheet.Expense)))
	fmt.Fprintf(&b, "Net    %s\n", FormatAmount(m.sheet.Net))

	direction := directionFilters[m.directionIdx]

	if direction != finance.DirectionExpense && len(m.sheet.IncomeBuckets) > 0 {
		b.WriteString("\nGelirler\n")
		b.WriteString(bars(m.sheet.IncomeBuckets))
	}

	if direction != finance.DirectionIncome && len(m.sheet.ExpenseBuckets) > 0 {
		b.WriteString("\nGiderler\n")
		b.WriteString(bars(m.sheet.ExpenseBuckets))
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func bars(buckets []pipeline.Bucket) string {
	var b strings.Builder

	for _, bucket := range buckets {
		n := int(bucket.Percent / 100 * barWidth)
		if n == 0 && bucket.Total > 0 {
			n = 1
		}

		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(bucket.Color)).Render(strings.Repeat("█", n))
		fmt.Fprintf(&b, "%-14s %s %5.1f%%\n", bucket.Category, bar, bucket.Percent)
	}

	return b.String()
}

func directionFilterLabel(d finance.Direction) string {
	if d == "" {
		return "Tümü"
	}

	return report.DirectionLabel(d)
}

func accountFilterLabel(a finance.Account) string {
	if a == "" {
		return "Tümü"
	}

	return report.AccountLabel(a)
}

func statusFilterLabel(s finance.Status) string {
	if s == "" {
		return "Tümü"
	}

	return report.StatusLabel(s)
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		amount := FormatAmount(tx.Amount)
		if tx.Direction == finance.DirectionExpense {
			amount = "-" + amount
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			report.DirectionLabel(tx.Direction),
			report.AccountLabel(tx.Account),
			tx.Category,
			tx.Description,
			tx.Person,
			amount,
			report.StatusLabel(tx.Status),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Messages

type ledgerLoadedMsg struct {
	txs   []*finance.Transaction
	sheet *finance.BalanceSheet
	err   error
}

func (m LedgerModel) loadCmd() tea.Cmd {
	filter := m.filter()
	svc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := svc.List(ctx, filter)
		if err != nil {
			return ledgerLoadedMsg{err: err}
		}

		// Totals always cover both directions of the period.
		sheetFilter := filter
		sheetFilter.Type = ""

		sheet, err := svc.BalanceSheet(ctx, sheetFilter)
		if err != nil {
			return ledgerLoadedMsg{err: err}
		}

		return ledgerLoadedMsg{txs: txs, sheet: sheet}
	}
}

type ledgerSavedMsg struct {
	status string
	err    error
}

func (m LedgerModel) saveCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	// The form owns the edited values; the model is copied on every update.
	updated := *tx
	updated.Description = m.form.GetString("description")
	updated.Person = m.form.GetString("person")
	updated.Category = m.form.GetString("category")
	updated.Status, _ = m.form.Get("status").(finance.Status)
	svc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Update(ctx, &updated); err != nil {
			return ledgerSavedMsg{err: err}
		}

		return ledgerSavedMsg{status: "Kaydedildi."}
	}
}

func (m LedgerModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	id := tx.ID
	svc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, id); err != nil {
			return ledgerSavedMsg{err: err}
		}

		return ledgerSavedMsg{status: "Silindi."}
	}
}
