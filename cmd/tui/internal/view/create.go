package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nexustechhub/mdts/internal/location"
	"github.com/nexustechhub/mdts/internal/product"
	"github.com/nexustechhub/mdts/internal/transfer"
)

type createState int

const (
	createStateLoading createState = iota
	createStateForm
	createStateSaving
	createStateResult
)

// createDraft holds the form bindings. It lives behind a pointer so huh keeps
// writing to the same fields while the model is passed around by value.
type createDraft struct {
	transferID string
	typ        transfer.Type
	from       int64
	to         int64
	createdBy  string
	items      string
}

// CreateModel drafts a Pending transfer. Out transfers are checked against
// current stock before they are saved.
type CreateModel struct {
	CommonModel
	transfers *transfer.Service
	products  *product.Service
	locations *location.Service

	state createState
	form  *huh.Form

	bySKU  map[string]*product.Product
	stores []*location.Location

	draft *createDraft

	created    *transfer.Transfer
	shortfalls []transfer.StockShortfall
	err        error
}

func NewCreateModel(transfers *transfer.Service, products *product.Service, locations *location.Service) CreateModel {
	return CreateModel{
		transfers: transfers,
		products:  products,
		locations: locations,
		draft:     &createDraft{typ: transfer.TypeOut},
	}
}

func (m CreateModel) Title() string { return "New Transfer" }

func (m CreateModel) ShortHelp() string {
	return "Navigate form | Esc: back"
}

func (m CreateModel) Init() tea.Cmd {
	return m.loadRefsCmd()
}

func (m CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadRefsMsg:
		if msg.err != nil {
			m.state = createStateResult
			m.err = msg.err

			return m, nil
		}

		if len(msg.locations) < 2 {
			m.state = createStateResult
			m.err = errors.New("at least two store locations are required")

			return m, nil
		}

		m.stores = msg.locations
		m.bySKU = make(map[string]*product.Product, len(msg.products))

		for _, p := range msg.products {
			m.bySKU[strings.ToUpper(p.SKU)] = p
		}

		m.draft.from = m.stores[0].ID
		m.draft.to = m.stores[1].ID
		m.form = m.buildForm()
		m.state = createStateForm

		return m, m.form.Init()

	case createResultMsg:
		m.state = createStateResult
		m.created = msg.transfer
		m.err = msg.err

		var stockErr *transfer.InsufficientStockError
		if errors.As(msg.err, &stockErr) {
			m.shortfalls = stockErr.Shortfalls
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.state != createStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	items, err := parseItemLines(m.draft.items, m.bySKU)
	if err != nil {
		m.state = createStateResult
		m.err = err

		return m, nil
	}

	m.state = createStateSaving

	return m, m.createCmd(transfer.CreateParams{
		TransferID:  strings.TrimSpace(m.draft.transferID),
		Status:      transfer.StatusPending,
		CreatedBy:   strings.TrimSpace(m.draft.createdBy),
		FromStoreID: m.draft.from,
		ToStoreID:   m.draft.to,
		Type:        m.draft.typ,
		Items:       items,
		CheckStock:  m.draft.typ == transfer.TypeOut,
	})
}

func (m CreateModel) buildForm() *huh.Form {
	stores := make([]huh.Option[int64], len(m.stores))
	for i, l := range m.stores {
		stores[i] = huh.NewOption(l.Name, l.ID)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("transfer_id").
				Title("Transfer ID").
				Placeholder("TO-140").
				Value(&m.draft.transferID).
				Validate(required("transfer ID")),

			huh.NewSelect[transfer.Type]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Out (ship from this store)", transfer.TypeOut),
					huh.NewOption("In (receive into this store)", transfer.TypeIn),
				).
				Value(&m.draft.typ),

			huh.NewInput().
				Key("created_by").
				Title("Created by").
				Value(&m.draft.createdBy).
				Validate(required("created by")),
		),
		huh.NewGroup(
			huh.NewSelect[int64]().
				Key("from_store").
				Title("From store").
				Options(stores...).
				Value(&m.draft.from),

			huh.NewSelect[int64]().
				Key("to_store").
				Title("To store").
				Options(stores...).
				Value(&m.draft.to).
				Validate(func(id int64) error {
					if id == m.draft.from {
						return errors.New("to store must differ from from store")
					}

					return nil
				}),
		),
		huh.NewGroup(
			huh.NewText().
				Key("items").
				Title("Items").
				Description("One line per product: SKU QUANTITY").
				Lines(6).
				Value(&m.draft.items).
				Validate(func(s string) error {
					_, err := parseItemLines(s, m.bySKU)
					return err
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

// parseItemLines reads "SKU QUANTITY" lines and snapshots each product's
// current price. Blank lines are ignored.
func parseItemLines(text string, bySKU map[string]*product.Product) ([]transfer.ItemParams, error) {
	var items []transfer.ItemParams

	for n, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected SKU QUANTITY", n+1)
		}

		p, ok := bySKU[strings.ToUpper(fields[0])]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown SKU %q", n+1, fields[0])
		}

		qty, err := strconv.Atoi(fields[1])
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("line %d: quantity must be a positive integer", n+1)
		}

		items = append(items, transfer.ItemParams{
			ProductID: p.ID,
			Quantity:  qty,
			Price:     p.Price,
		})
	}

	if len(items) == 0 {
		return nil, errors.New("at least one item is required")
	}

	return items, nil
}

func (m CreateModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case createStateLoading:
		return style.Render("Loading products and stores...")
	case createStateForm:
		return style.Render(m.form.View())
	case createStateSaving:
		return style.Render("Saving transfer...")
	}

	return style.Render(m.viewResult())
}

func (m CreateModel) viewResult() string {
	if m.err == nil {
		return successStyle.Render(fmt.Sprintf(
			"Created transfer %s (#%d), %d item(s), status %s.",
			m.created.TransferID, m.created.ID, len(m.created.Items), m.created.Status,
		)) + "\n\n(Esc to go back)"
	}

	var b strings.Builder

	b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))

	if len(m.shortfalls) > 0 {
		b.WriteString("\n\n")

		for _, s := range m.shortfalls {
			fmt.Fprintf(&b, "  %-12s %-24s requested %d, available %d\n",
				s.SKU, truncate(s.ProductName, 24), s.Requested, s.Available)
		}
	}

	b.WriteString("\n\n(Esc to go back)")

	return b.String()
}

// Messages

type loadRefsMsg struct {
	products  []*product.Product
	locations []*location.Location
	err       error
}

func (m CreateModel) loadRefsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := m.products.List(ctx)
		if err != nil {
			return loadRefsMsg{err: err}
		}

		locations, err := m.locations.List(ctx)
		if err != nil {
			return loadRefsMsg{err: err}
		}

		return loadRefsMsg{products: products, locations: locations}
	}
}

type createResultMsg struct {
	transfer *transfer.Transfer
	err      error
}

func (m CreateModel) createCmd(params transfer.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		t, err := m.transfers.Create(ctx, params)

		return createResultMsg{transfer: t, err: err}
	}
}
