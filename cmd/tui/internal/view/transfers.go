package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nexustechhub/mdts/internal/transfer"
)

type transfersState int

const (
	transfersStateBrowse transfersState = iota
	transfersStateDates
	transfersStateConfirm
)

var statusCycle = []*transfer.Status{
	nil,
	new(transfer.StatusPending),
	new(transfer.StatusCompleted),
	new(transfer.StatusCancelled),
}

type TransfersModel struct {
	CommonModel
	svc     *transfer.Service
	perPage int

	state  transfersState
	table  table.Model
	picker DateRangePicker
	form   *huh.Form

	transfers  []*transfer.Transfer
	pagination transfer.Pagination
	page       int

	statusIdx  int
	dateLabel  string
	filter     transfer.ListFilter
	showDetail bool

	pendingAction transfer.Action
	confirmed     *bool // bound to the confirm form

	loading bool
	err     error
	status  string
}

func NewTransfersModel(svc *transfer.Service, perPage int) TransfersModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Transfer", Width: 12},
		{Title: "Type", Width: 15},
		{Title: "Status", Width: 10},
		{Title: "From", Width: 16},
		{Title: "To", Width: 16},
		{Title: "Date", Width: 12},
		{Title: "Items", Width: 6},
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

	return TransfersModel{
		svc:       svc,
		perPage:   perPage,
		table:     t,
		picker:    NewDateRangePicker(),
		page:      1,
		dateLabel: PeriodAll.String(),
		loading:   true,
	}
}

func (m TransfersModel) Title() string { return "Inventory Transfers" }

func (m TransfersModel) ShortHelp() string {
	switch m.state {
	case transfersStateDates:
		return "Enter: select | Esc: close"
	case transfersStateConfirm:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | c: complete | x: cancel | enter: details | s: status | d: dates | n/p: page | r: refresh"
}

func (m TransfersModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransfersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTransfersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.transfers = msg.result.Transfers
		m.pagination = msg.result.Pagination
		m.refreshTable()

		return m, nil

	case reconcileMsg:
		m.state = transfersStateBrowse
		m.form = nil
		m.table.Focus()

		switch {
		case msg.err != nil:
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		case msg.result.AlreadyProcessed:
			m.status = fmt.Sprintf("Transfer %s is already %s", msg.result.TransferID, msg.result.Status)
		default:
			m.status = successStyle.Render(fmt.Sprintf("Transfer %s marked as %s", msg.result.TransferID, msg.result.Status))
		}

		return m, m.loadCmd()

	case DateRangeMsg:
		m.state = transfersStateBrowse
		m.filter.FromDate = msg.From
		m.filter.ToDate = msg.To
		m.dateLabel = msg.Label
		m.page = 1
		m.table.Focus()

		return m, m.loadCmd()

	case DateRangeCancelledMsg:
		m.state = transfersStateBrowse
		m.table.Focus()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil
	}

	switch m.state {
	case transfersStateDates:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	case transfersStateConfirm:
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m TransfersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusIdx = (m.statusIdx + 1) % len(statusCycle)
			m.filter.Status = statusCycle[m.statusIdx]
			m.page = 1

			return m, m.loadCmd()
		case "d":
			m.picker.Reset()
			m.state = transfersStateDates
			m.table.Blur()

			return m, nil
		case "n":
			if m.pagination.NextPageExist {
				m.page++
				return m, m.loadCmd()
			}
		case "p":
			if m.pagination.PreviousPageExist {
				m.page--
				return m, m.loadCmd()
			}
		case "enter":
			m.showDetail = !m.showDetail
			return m, nil
		case "c":
			return m.askConfirm(transfer.ActionComplete)
		case "x":
			return m.askConfirm(transfer.ActionCancel)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransfersModel) selected() *transfer.Transfer {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.transfers) {
		return nil
	}

	return m.transfers[idx]
}

func (m TransfersModel) askConfirm(action transfer.Action) (tea.Model, tea.Cmd) {
	t := m.selected()
	if t == nil {
		return m, nil
	}

	m.pendingAction = action
	m.confirmed = new(false)

	verb := "Complete"
	if action == transfer.ActionCancel {
		verb = "Cancel"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("%s transfer %s?", verb, t.TransferID)).
				Description(stockEffect(t, action)).
				Affirmative("Yes").
				Negative("No").
				Value(m.confirmed),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = transfersStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

// stockEffect describes what reconciling t would do to product stock.
func stockEffect(t *transfer.Transfer, action transfer.Action) string {
	switch {
	case action == transfer.ActionCancel && t.Status == transfer.StatusPending:
		return "Stock is not changed."
	case (t.Type == transfer.TypeOut) == (action == transfer.ActionComplete):
		return fmt.Sprintf("Removes stock for %d item(s).", len(t.Items))
	}

	return fmt.Sprintf("Adds stock for %d item(s).", len(t.Items))
}

func (m TransfersModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = transfersStateBrowse
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

	if !*m.confirmed {
		m.state = transfersStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.reconcileCmd(m.selected(), m.pendingAction)
}

func (m TransfersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transfers...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	statusLabel := "All"
	if st := statusCycle[m.statusIdx]; st != nil {
		statusLabel = string(*st)
	}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [d] Date: %s",
		activeStyle(statusLabel),
		activeStyle(m.dateLabel),
	)

	footer := faintStyle.Render(fmt.Sprintf(
		"Page %d of %d | %d transfer(s)",
		m.pagination.CurrentPage, max(m.pagination.TotalPages, 1), m.pagination.TotalRecords,
	))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		footer,
	)

	var side string

	switch {
	case m.state == transfersStateDates:
		side = panelStyle.Width(44).Render(m.picker.View())
	case m.state == transfersStateConfirm && m.form != nil:
		side = panelStyle.Width(54).Render(m.form.View())
	case m.showDetail:
		if t := m.selected(); t != nil {
			side = panelStyle.Width(54).Render(detailView(t))
		}
	}

	if side != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, side)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func detailView(t *transfer.Transfer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Transfer %s (%s)\n\n", t.TransferID, t.Type)
	fmt.Fprintf(&b, "%s -> %s\n", t.FromStoreName, t.ToStoreName)
	fmt.Fprintf(&b, "Created by %s on %s\n\n", t.CreatedBy, FormatDate(t.CreatedAt))

	for _, it := range t.Items {
		fmt.Fprintf(&b, "%-10s %-22s x%-4d %8s\n",
			it.SKU, truncate(it.Name, 22), it.Quantity, FormatPrice(it.Price))
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func (m *TransfersModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.transfers))
	for _, t := range m.transfers {
		rows = append(rows, table.Row{
			strconv.FormatInt(t.ID, 10),
			t.TransferID,
			string(t.Type),
			string(t.Status),
			t.FromStoreName,
			t.ToStoreName,
			FormatDate(t.TransactionDate),
			strconv.Itoa(len(t.Items)),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Messages

type loadTransfersMsg struct {
	result *transfer.ListResult
	err    error
}

func (m TransfersModel) loadCmd() tea.Cmd {
	filter := m.filter
	page := transfer.Page{Number: m.page, Size: m.perPage}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.List(ctx, filter, page)

		return loadTransfersMsg{result: res, err: err}
	}
}

type reconcileMsg struct {
	result *transfer.ReconcileResult
	err    error
}

func (m TransfersModel) reconcileCmd(t *transfer.Transfer, action transfer.Action) tea.Cmd {
	if t == nil {
		return nil
	}

	id := t.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Reconcile(ctx, id, action)

		return reconcileMsg{result: res, err: err}
	}
}
