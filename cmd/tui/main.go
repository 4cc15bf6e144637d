package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/praxis/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/praxis/internal/backend"
	"github.com/MrJamesThe3rd/praxis/internal/config"
)

type model struct {
	svc *backend.Services

	currentView View
	width       int
	height      int

	dashboardView    view.DashboardModel
	ledgerView       view.LedgerModel
	newTxView        view.NewTransactionModel
	appointmentsView view.AppointmentsModel
	importView       view.ImportModel
	exportView       view.ExportModel
}

type View int

const (
	ViewMenu         View = 0
	ViewDashboard    View = 1
	ViewLedger       View = 2
	ViewNewTx        View = 3
	ViewAppointments View = 4
	ViewImport       View = 5
	ViewExport       View = 6
)

func initialModel(svc *backend.Services) model {
	return model{
		svc:         svc,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// resize replays the last window size to a freshly opened view.
func (m model) resize() tea.Cmd {
	if m.width == 0 {
		return nil
	}

	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}

	return func() tea.Msg { return size }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.svc.Scheduling)

				return m, tea.Batch(m.dashboardView.Init(), m.resize())
			case "2":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.svc.Finance, m.svc.Location)

				return m, tea.Batch(m.ledgerView.Init(), m.resize())
			case "3":
				m.currentView = ViewNewTx
				m.newTxView = view.NewNewTransactionModel(m.svc.Finance, m.svc.Categories, m.svc.Location)

				return m, m.newTxView.Init()
			case "4":
				m.currentView = ViewAppointments
				m.appointmentsView = view.NewAppointmentsModel(m.svc.Scheduling)

				return m, tea.Batch(m.appointmentsView.Init(), m.resize())
			case "5":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.svc.Importer)

				return m, tea.Batch(m.importView.Init(), m.resize())
			case "6":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.svc.Reports, m.svc.Location)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	case ViewNewTx:
		var newModel tea.Model
		newModel, cmd = m.newTxView.Update(msg)
		m.newTxView = newModel.(view.NewTransactionModel)
	case ViewAppointments:
		var newModel tea.Model
		newModel, cmd = m.appointmentsView.Update(msg)
		m.appointmentsView = newModel.(view.AppointmentsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) active() view.View {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboardView
	case ViewLedger:
		return m.ledgerView
	case ViewNewTx:
		return m.newTxView
	case ViewAppointments:
		return m.appointmentsView
	case ViewImport:
		return m.importView
	case ViewExport:
		return m.exportView
	}

	return nil
}

func (m model) View() string {
	v := m.active()
	if v == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"Praxis\n\n" +
				"1. Ana sayfa\n" +
				"2. Gelir / Gider\n" +
				"3. Yeni hareket\n" +
				"4. Randevular\n" +
				"5. Ekstre içe aktar\n" +
				"6. Dışa aktar\n\n" +
				"q. Çıkış",
		)
	}

	help := lipgloss.NewStyle().Faint(true).Padding(0, 1).Render(v.Title() + " · " + v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, v.View(), help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := tea.LogToFile("praxis-tui.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	slog.SetDefault(cfg.Logger(logFile))

	svc, err := backend.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize backend", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	p := tea.NewProgram(initialModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
