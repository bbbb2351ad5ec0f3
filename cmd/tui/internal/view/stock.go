package view

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nexustechhub/mdts/internal/product"
)

// lowStock is the quantity at or below which a product is highlighted.
const lowStock = 5

type productItem struct {
	p *product.Product
}

func (i productItem) Title() string {
	return fmt.Sprintf("%-12s %s", i.p.SKU, i.p.Name)
}

func (i productItem) Description() string {
	return fmt.Sprintf("#%d  price %s  stock %d", i.p.ID, FormatPrice(i.p.Price), i.p.StockQuantity)
}

func (i productItem) FilterValue() string {
	return i.p.SKU + " " + i.p.Name
}

type StockModel struct {
	CommonModel
	svc *product.Service

	list     list.Model
	products []*product.Product

	loading bool
	status  string
}

func NewStockModel(svc *product.Service) StockModel {
	l := list.New([]list.Item{}, productDelegate{}, 80, 20)
	l.Title = "Product Stock"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return StockModel{
		svc:     svc,
		list:    l,
		loading: true,
	}
}

func (m StockModel) Title() string { return "Product Stock" }

func (m StockModel) ShortHelp() string {
	return "Esc: back | /: filter | r: refresh"
}

func (m StockModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m StockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProductsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.products = msg.products
		m.status = ""

		items := make([]list.Item, len(m.products))
		for i, p := range m.products {
			items[i] = productItem{p: p}
		}

		if len(items) == 0 {
			m.status = "No products yet. Import a stock file first."
		}

		return m, m.list.SetItems(items)

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)

		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "esc":
				if m.list.FilterState() == list.FilterApplied {
					break // let the list clear the filter
				}

				return m, Back
			case "r":
				m.loading = true
				return m, m.loadCmd()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m StockModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading products...")
	}

	statusLine := ""
	if m.status != "" {
		statusLine = m.status + "\n"
	}

	return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())
}

// Messages

type loadProductsMsg struct {
	products []*product.Product
	err      error
}

func (m StockModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := m.svc.List(ctx)

		return loadProductsMsg{products: products, err: err}
	}
}

type productDelegate struct{}

func (d productDelegate) Height() int                             { return 2 }
func (d productDelegate) Spacing() int                            { return 0 }
func (d productDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d productDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(productItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	desc := faintStyle.Render(i.Description())
	if i.p.StockQuantity <= lowStock {
		desc = errorStyle.Render(i.Description() + "  low")
	}

	fmt.Fprintf(w, "  %s\n    %s\n", title, desc)
}
