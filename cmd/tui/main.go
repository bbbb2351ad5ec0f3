package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/nexustechhub/mdts/cmd/tui/internal/view"
	"github.com/nexustechhub/mdts/internal/config"
	"github.com/nexustechhub/mdts/internal/database"
	"github.com/nexustechhub/mdts/internal/location"
	locationStore "github.com/nexustechhub/mdts/internal/location/store"
	"github.com/nexustechhub/mdts/internal/product"
	productStore "github.com/nexustechhub/mdts/internal/product/store"
	"github.com/nexustechhub/mdts/internal/transfer"
	transferStore "github.com/nexustechhub/mdts/internal/transfer/store"
)

type model struct {
	transferService *transfer.Service
	productService  *product.Service
	locationService *location.Service
	perPage         int

	currentView View
	size        tea.WindowSizeMsg

	transfersView view.TransfersModel
	createView    view.CreateModel
	stockView     view.StockModel
	importView    view.ImportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewTransfers View = 1
	ViewCreate    View = 2
	ViewStock     View = 3
	ViewImport    View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	locSvc := location.NewService(locationStore.New(db))
	prodSvc := product.NewService(productStore.New(db))
	txSvc := transfer.NewService(transferStore.New(db), locSvc)

	return model{
		transferService: txSvc,
		productService:  prodSvc,
		locationService: locSvc,
		perPage:         cfg.Transfers.DefaultPerPage,
		currentView:     ViewMenu,
		importView:      view.NewImportModel(prodSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// resize replays the last window size so a freshly built view lays itself out.
func (m model) resize() tea.Cmd {
	if m.size.Width == 0 {
		return nil
	}

	size := m.size

	return func() tea.Msg { return size }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewTransfers
				m.transfersView = view.NewTransfersModel(m.transferService, m.perPage)

				return m, tea.Batch(m.transfersView.Init(), m.resize())
			case "2":
				m.currentView = ViewCreate
				m.createView = view.NewCreateModel(m.transferService, m.productService, m.locationService)

				return m, m.createView.Init()
			case "3":
				m.currentView = ViewStock
				m.stockView = view.NewStockModel(m.productService)

				return m, tea.Batch(m.stockView.Init(), m.resize())
			case "4":
				m.currentView = ViewImport
				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewTransfers:
		var newModel tea.Model
		newModel, cmd = m.transfersView.Update(msg)
		m.transfersView = newModel.(view.TransfersModel)
	case ViewCreate:
		var newModel tea.Model
		newModel, cmd = m.createView.Update(msg)
		m.createView = newModel.(view.CreateModel)
	case ViewStock:
		var newModel tea.Model
		newModel, cmd = m.stockView.Update(msg)
		m.stockView = newModel.(view.StockModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"MDTS Inventory\n\n" +
				"1. Inventory Transfers\n" +
				"2. New Transfer\n" +
				"3. Product Stock\n" +
				"4. Import Product Stock\n\n" +
				"q. Quit",
		)
	case ViewTransfers:
		return m.transfersView.View()
	case ViewCreate:
		return m.createView.View()
	case ViewStock:
		return m.stockView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
