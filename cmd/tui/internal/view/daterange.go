package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Period is a preset window over transfer transaction dates.
type Period int

const (
	PeriodAll Period = iota
	PeriodToday
	PeriodThisWeek
	PeriodThisMonth
	PeriodLastMonth
	PeriodCustom
)

func (p Period) String() string {
	switch p {
	case PeriodAll:
		return "All Time"
	case PeriodToday:
		return "Today"
	case PeriodThisWeek:
		return "This Week"
	case PeriodThisMonth:
		return "This Month"
	case PeriodLastMonth:
		return "Last Month"
	case PeriodCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Range returns the calendar days covered by p relative to now. Both bounds
// are inclusive days; nil bounds mean unbounded.
func (p Period) Range(now time.Time) (*time.Time, *time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch p {
	case PeriodToday:
		return &today, &today
	case PeriodThisWeek:
		offset := int(today.Weekday())
		if offset == 0 {
			offset = 7
		}

		start := today.AddDate(0, 0, 1-offset)

		return &start, &today
	case PeriodThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return &start, &today
	case PeriodLastMonth:
		start := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)

		return &start, &end
	}

	return nil, nil
}

// DateRangeMsg is emitted once a range is chosen. Nil bounds mean unbounded.
type DateRangeMsg struct {
	Label string
	From  *time.Time
	To    *time.Time
}

// DateRangeCancelledMsg is emitted when the picker is dismissed.
type DateRangeCancelledMsg struct{}

type pickerState int

const (
	pickerStateSelect pickerState = iota
	pickerStateCustom
)

// DateRangePicker selects a preset period or a custom From/To pair.
type DateRangePicker struct {
	state    pickerState
	selected Period
	now      func() time.Time

	fromInput  textinput.Model
	toInput    textinput.Model
	focusIndex int

	err error
}

func NewDateRangePicker() DateRangePicker {
	from := textinput.New()
	from.Placeholder = "YYYY-MM-DD"
	from.CharLimit = 10
	from.Width = 12
	from.Prompt = "From: "

	to := textinput.New()
	to.Placeholder = "YYYY-MM-DD"
	to.CharLimit = 10
	to.Width = 12
	to.Prompt = "To:   "

	return DateRangePicker{
		now:       time.Now,
		fromInput: from,
		toInput:   to,
	}
}

func (m DateRangePicker) Update(msg tea.Msg) (DateRangePicker, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == pickerStateCustom {
			return m.updateInputs(msg)
		}

		return m, nil
	}

	if m.state == pickerStateSelect {
		return m.updateSelect(keyMsg)
	}

	return m.updateCustom(keyMsg)
}

func (m DateRangePicker) updateSelect(msg tea.KeyMsg) (DateRangePicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > PeriodAll {
			m.selected--
		}
	case "down", "j":
		if m.selected < PeriodCustom {
			m.selected++
		}
	case "esc":
		return m, func() tea.Msg { return DateRangeCancelledMsg{} }
	case "enter":
		if m.selected == PeriodCustom {
			m.state = pickerStateCustom
			m.focusIndex = 0
			m.fromInput.Focus()

			return m, textinput.Blink
		}

		from, to := m.selected.Range(m.now())
		label := m.selected.String()

		return m, func() tea.Msg {
			return DateRangeMsg{Label: label, From: from, To: to}
		}
	}

	return m, nil
}

func (m DateRangePicker) updateCustom(msg tea.KeyMsg) (DateRangePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.fromInput.Blur()
		m.toInput.Blur()

		if m.focusIndex == 0 {
			m.fromInput.Focus()
		} else {
			m.toInput.Focus()
		}

		return m, textinput.Blink

	case "esc":
		m.state = pickerStateSelect
		m.err = nil

		return m, nil

	case "enter":
		from, to, err := parseCustomRange(m.fromInput.Value(), m.toInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		label := fmt.Sprintf("%s .. %s", dayLabel(from), dayLabel(to))

		return m, func() tea.Msg {
			return DateRangeMsg{Label: label, From: from, To: to}
		}
	}

	return m.updateInputs(msg)
}

func (m DateRangePicker) updateInputs(msg tea.Msg) (DateRangePicker, tea.Cmd) {
	var fromCmd, toCmd tea.Cmd

	m.fromInput, fromCmd = m.fromInput.Update(msg)
	m.toInput, toCmd = m.toInput.Update(msg)

	return m, tea.Batch(fromCmd, toCmd)
}

// parseCustomRange accepts either bound empty, leaving that side open.
func parseCustomRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if s := strings.TrimSpace(fromStr); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, nil, errors.New("invalid from date (YYYY-MM-DD)")
		}

		from = &t
	}

	if s := strings.TrimSpace(toStr); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, nil, errors.New("invalid to date (YYYY-MM-DD)")
		}

		to = &t
	}

	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, errors.New("to date is before from date")
	}

	return from, to, nil
}

func dayLabel(t *time.Time) string {
	if t == nil {
		return "*"
	}

	return FormatDate(*t)
}

// Reset returns the picker to the preset list.
func (m *DateRangePicker) Reset() {
	m.state = pickerStateSelect
	m.err = nil
	m.fromInput.SetValue("")
	m.toInput.SetValue("")
}

func (m DateRangePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == pickerStateCustom {
		return fmt.Sprintf(
			"Transaction date range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to go back)%s",
			m.fromInput.View(),
			m.toInput.View(),
			errStr,
		)
	}

	var b strings.Builder

	b.WriteString("Transaction date:\n\n")

	for p := PeriodAll; p <= PeriodCustom; p++ {
		cursor := " "
		if p == m.selected {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, p)
	}

	b.WriteString("\n(Enter to select, Esc to close)")

	return b.String() + errStr
}
