package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

// TimeframeSelectedMsg is emitted when the user has picked a date range.
// Range is nil for "all time".
type TimeframeSelectedMsg struct {
	Range *pipeline.DateRange
	Label string
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	minFrame Timeframe
	loc      *time.Location
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

// NewTimeframePicker creates a picker starting from minFrame. Entered and
// computed days are calendar days in loc.
func NewTimeframePicker(minFrame Timeframe, loc *time.Location) TimeframePicker {
	si := textinput.New()
	si.Placeholder = "GG.AA.YYYY"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Başlangıç: "

	ei := textinput.New()
	ei.Placeholder = "GG.AA.YYYY"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "Bitiş:     "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   minFrame,
		minFrame:   minFrame,
		loc:        loc,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			return m.updateCustom(msg)
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > m.minFrame {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.startInput.Focus()
			m.focusIndex = 0

			return m, textinput.Blink
		}

		selected := TimeframeSelectedMsg{
			Range: timeframeRange(m.selected, m.now(), m.loc),
			Label: m.selected.String(),
		}

		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink
		}

		m.endInput.Focus()

		return m, textinput.Blink

	case "enter":
		r, err := m.customRange()
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		selected := TimeframeSelectedMsg{Range: r, Label: rangeLabel(r)}

		return m, func() tea.Msg { return selected }

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

// customRange reads the two inputs. Either may be left empty for an open end.
func (m TimeframePicker) customRange() (*pipeline.DateRange, error) {
	var r pipeline.DateRange

	if s := strings.TrimSpace(m.startInput.Value()); s != "" {
		from, err := time.ParseInLocation(dateLayout, s, m.loc)
		if err != nil {
			return nil, errors.New("başlangıç tarihi geçersiz (GG.AA.YYYY)")
		}

		r.From = &from
	}

	if s := strings.TrimSpace(m.endInput.Value()); s != "" {
		to, err := time.ParseInLocation(dateLayout, s, m.loc)
		if err != nil {
			return nil, errors.New("bitiş tarihi geçersiz (GG.AA.YYYY)")
		}

		r.To = &to
	}

	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return nil, errors.New("bitiş tarihi başlangıçtan önce")
	}

	if r.From == nil && r.To == nil {
		return nil, nil
	}

	return &r, nil
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd

	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nHata: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Özel aralık:\n\n%s\n%s\n\n(Enter: onayla, Tab: geç, Esc: geri)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	var b strings.Builder

	b.WriteString("Dönem seçin:\n\n")

	for i := m.minFrame; i <= TimeframeCustom; i++ {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, i.String())
	}

	b.WriteString("\n(Enter: seç, Esc: geri)")

	return b.String() + errStr
}

// IsSelecting returns true if the picker is in the selection state (not custom input).
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = m.minFrame
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
