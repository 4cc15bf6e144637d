package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/praxis/internal/categorize"
	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/importer/statement"
	"github.com/MrJamesThe3rd/praxis/internal/report"
)

// NewTransactionModel records a single income or expense through a form.
type NewTransactionModel struct {
	CommonModel
	txService  *finance.Service
	categories *categorize.Service
	loc        *time.Location

	form   *huh.Form
	saving bool
	saved  *finance.Transaction
	err    error
}

func NewNewTransactionModel(txSvc *finance.Service, catSvc *categorize.Service, loc *time.Location) NewTransactionModel {
	m := NewTransactionModel{
		txService:  txSvc,
		categories: catSvc,
		loc:        loc,
	}
	m.form = m.buildForm()

	return m
}

func (m NewTransactionModel) Title() string { return "Yeni hareket" }

func (m NewTransactionModel) ShortHelp() string {
	if m.saved != nil || m.err != nil {
		return "n: yeni kayıt | Esc: geri"
	}

	return "Tab/Enter: ilerle | Esc: geri"
}

func (m NewTransactionModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m NewTransactionModel) buildForm() *huh.Form {
	date := time.Now().In(m.loc).Format(dateLayout)
	direction := finance.DirectionIncome
	account := finance.AccountCash
	status := finance.StatusPaid

	var amount, desc, person, category string

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("date").
				Title("Tarih").
				Placeholder("GG.AA.YYYY").
				Value(&date).
				Validate(func(s string) error {
					if _, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), m.loc); err != nil {
						return errors.New("tarih GG.AA.YYYY olmalı")
					}

					return nil
				}),

			huh.NewSelect[finance.Direction]().
				Key("direction").
				Title("Tür").
				Options(
					huh.NewOption(report.DirectionLabel(finance.DirectionIncome), finance.DirectionIncome),
					huh.NewOption(report.DirectionLabel(finance.DirectionExpense), finance.DirectionExpense),
				).
				Value(&direction),

			huh.NewSelect[finance.Account]().
				Key("account").
				Title("Hesap").
				Options(
					huh.NewOption(report.AccountLabel(finance.AccountCash), finance.AccountCash),
					huh.NewOption(report.AccountLabel(finance.AccountBank), finance.AccountBank),
				).
				Value(&account),

			huh.NewInput().
				Key("amount").
				Title("Tutar (₺)").
				Placeholder("1.250,00").
				Value(&amount).
				Validate(func(s string) error {
					kurus, err := statement.ParseAmount(s)
					if err != nil || kurus <= 0 {
						return errors.New("geçerli bir pozitif tutar girin")
					}

					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Açıklama").
				Value(&desc),

			huh.NewInput().
				Key("person").
				Title("Kişi").
				Description("Danışan ya da ödeme yapılan").
				Value(&person),

			huh.NewInput().
				Key("category").
				Title("Kategori").
				Description("Boş bırakılırsa kurallardan önerilir").
				Value(&category),

			huh.NewSelect[finance.Status]().
				Key("status").
				Title("Durum").
				Options(statusOptions()...).
				Value(&status),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m NewTransactionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case txCreatedMsg:
		m.saving = false
		m.saved = msg.tx
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if (m.saved != nil || m.err != nil) && msg.String() == "n" {
			m.saved, m.err = nil, nil
			m.form = m.buildForm()

			return m, m.form.Init()
		}
	}

	if m.saving || m.saved != nil || m.err != nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = true

	return m, m.createCmd()
}

func (m NewTransactionModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch {
	case m.saving:
		return style.Render("Kaydediliyor...")
	case m.err != nil:
		return style.Render(errorStyle.Render(fmt.Sprintf("Hata: %v", m.err)) + "\n\n(n: tekrar dene, Esc: geri)")
	case m.saved != nil:
		tx := m.saved

		return style.Render(successStyle.Render("Kaydedildi.") + "\n\n" + boxStyle.Render(fmt.Sprintf(
			"%s  %s  %s\n%s / %s\n%s",
			FormatDate(tx.Date),
			report.DirectionLabel(tx.Direction),
			FormatAmount(tx.Amount),
			tx.Category,
			report.AccountLabel(tx.Account),
			tx.Description,
		)) + "\n\n(n: yeni kayıt, Esc: geri)")
	}

	return style.Render("Yeni hareket\n\n" + m.form.View())
}

type txCreatedMsg struct {
	tx  *finance.Transaction
	err error
}

func (m NewTransactionModel) createCmd() tea.Cmd {
	f := m.form
	loc := m.loc
	txSvc := m.txService
	catSvc := m.categories

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(f.GetString("date")), loc)
		if err != nil {
			return txCreatedMsg{err: err}
		}

		amount, err := statement.ParseAmount(f.GetString("amount"))
		if err != nil {
			return txCreatedMsg{err: err}
		}

		params := finance.CreateParams{
			Date:        date,
			Description: f.GetString("description"),
			Person:      f.GetString("person"),
			Category:    f.GetString("category"),
			Amount:      amount,
		}
		params.Direction, _ = f.Get("direction").(finance.Direction)
		params.Account, _ = f.Get("account").(finance.Account)
		params.Status, _ = f.Get("status").(finance.Status)

		if strings.TrimSpace(params.Category) == "" && catSvc != nil {
			suggested, err := catSvc.Suggest(ctx, params.Description)
			if err != nil {
				return txCreatedMsg{err: fmt.Errorf("suggesting category: %w", err)}
			}

			params.Category = suggested
		}

		tx, err := txSvc.Create(ctx, params)

		return txCreatedMsg{tx: tx, err: err}
	}
}
