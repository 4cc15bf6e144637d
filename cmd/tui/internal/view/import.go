package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/importer"
	"github.com/MrJamesThe3rd/praxis/internal/report"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateLoading
	importStatePreview
	importStateResult
)

// ImportModel previews a bank statement and imports it into the ledger.
type ImportModel struct {
	CommonModel
	importService *importer.Service

	state      importState
	filePicker filepicker.Model
	path       string
	preview    list.Model
	params     []finance.CreateParams

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Ekstre içe aktar" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: içe aktar | Esc: vazgeç"
	}

	return "Esc: geri | Enter: seç"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			if msg.Type == tea.KeyEnter {
				m.state = importStateLoading
				m.status = fmt.Sprintf("%d satır içe aktarılıyor...", len(m.params))

				return m, m.importCmd(m.path)
			}

			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)

			return m, cmd
		}

	case previewResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Hata: %v", msg.err)

			return m, nil
		}

		m.params = msg.params
		m.state = importStatePreview

		items := make([]list.Item, len(msg.params))
		for i, p := range msg.params {
			items[i] = previewItem{p: p}
		}

		m.preview = list.New(items, list.NewDefaultDelegate(), 90, 20)
		m.preview.Title = fmt.Sprintf("%s · %d satır", filepath.Base(m.path), len(items))
		m.preview.SetShowHelp(false)

		return m, nil

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Hata: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("%d hareket eklendi, %d tekrar atlandı.", len(msg.result.Imported), len(msg.result.Skipped))

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		if m.state == importStatePreview {
			m.preview.SetSize(msg.Width-4, msg.Height-8)
		}
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = importStateLoading
		m.status = fmt.Sprintf("%s okunuyor...", filepath.Base(path))

		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""
		m.params = nil

		return m, nil
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("İçe aktarılacak ekstreyi seçin (CSV):\n\n%s", m.filePicker.View()),
		)
	case importStateLoading:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.preview.View())
	case importStateResult:
		style := successStyle
		if m.err != nil {
			style = errorStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc: geri)")
	}

	return ""
}

type previewItem struct {
	p finance.CreateParams
}

func (i previewItem) Title() string {
	sign := "+"
	if i.p.Direction == finance.DirectionExpense {
		sign = "-"
	}

	return fmt.Sprintf("%s  %s%s  %s", FormatDate(i.p.Date), sign, report.Lira(i.p.Amount), i.p.Description)
}

func (i previewItem) Description() string { return i.p.Category }
func (i previewItem) FilterValue() string { return i.p.Description }

// Messages

type previewResultMsg struct {
	params []finance.CreateParams
	err    error
}

type importResultMsg struct {
	result *finance.ImportResult
	err    error
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	svc := m.importService

	return func() tea.Msg {
		var params []finance.CreateParams

		err := withFile(path, func(ctx context.Context, r io.Reader) error {
			var err error
			params, err = svc.Preview(ctx, r)

			return err
		})

		return previewResultMsg{params: params, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	svc := m.importService

	return func() tea.Msg {
		var result *finance.ImportResult

		err := withFile(path, func(ctx context.Context, r io.Reader) error {
			var err error
			result, err = svc.Import(ctx, r)

			return err
		})

		return importResultMsg{result: result, err: err}
	}
}

func withFile(path string, fn func(ctx context.Context, r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	return fn(ctx, f)
}
