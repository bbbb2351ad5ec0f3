package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nexustechhub/mdts/internal/product"
)

const (
	importTimeout = 2 * time.Minute

	// maxShownRowErrors caps the skipped-row report; the rest is summarised.
	maxShownRowErrors = 15
)

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	svc *product.Service

	state      importState
	filePicker filepicker.Model

	result *product.ImportResult
	status string
	err    error
}

func NewImportModel(svc *product.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		svc:        svc,
		filePicker: fp,
	}
}

func (m ImportModel) Title() string { return "Import Product Stock" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
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

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err
		m.result = msg.result

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d product(s), skipped %d row(s).", msg.result.Imported, msg.result.Skipped)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.err = nil
		m.result = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a stock file (sku, name, price, stock_quantity):\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	var b strings.Builder

	b.WriteString(successStyle.Render(m.status))
	fmt.Fprintf(&b, "\n%s\n", faintStyle.Render("Batch "+m.result.BatchID.String()))

	if len(m.result.Errors) > 0 {
		b.WriteString("\nSkipped rows:\n")

		for i, e := range m.result.Errors {
			if i == maxShownRowErrors {
				fmt.Fprintf(&b, "  ... and %d more\n", len(m.result.Errors)-maxShownRowErrors)
				break
			}

			fmt.Fprintf(&b, "  line %d: %s\n", e.Line, e.Reason)
		}
	}

	b.WriteString("\n(Esc to import another file)")

	return style.Render(b.String())
}

// Messages

type importResultMsg struct {
	result *product.ImportResult
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.svc.Import(ctx, f)

		return importResultMsg{result: result, err: err}
	}
}
