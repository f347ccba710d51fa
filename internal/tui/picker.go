// Package tui contains the interactive terminal views of the CLI.
package tui

import (
	"errors"
	"fmt"

	"github.com/brizzai/auto-request/internal/openapi"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled is returned by Pick when the user leaves without choosing
var ErrCanceled = errors.New("no operation selected")

// pickerKeyMap holds key bindings for the picker actions.
type pickerKeyMap struct {
	choose  key.Binding
	details key.Binding
	quit    key.Binding
}

func newPickerKeyMap() *pickerKeyMap {
	return &pickerKeyMap{
		choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Send"),
		),
		details: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Details"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
	}
}

// PickerModel lists the operations of a document and records the one chosen
type PickerModel struct {
	list   list.Model
	keys   *pickerKeyMap
	chosen *openapi.Operation
}

// NewPickerModel creates a picker over ops
func NewPickerModel(title string, ops []*openapi.Operation) PickerModel {
	keys := newPickerKeyMap()

	items := make([]list.Item, len(ops))
	for i, op := range ops {
		items[i] = OperationItem{Op: op}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = titleStyle.Render(title)
	l.SetShowFilter(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.choose, keys.details}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.choose, keys.details, keys.quit}
	}

	return PickerModel{list: l, keys: keys}
}

// Init returns the initial command for the picker.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses and window resizes
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.choose):
			if item, ok := m.list.SelectedItem().(OperationItem); ok {
				m.chosen = item.Op
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.details):
			if item, ok := m.list.SelectedItem().(OperationItem); ok {
				return m, m.list.NewStatusMessage(statusMessageStyle(details(item.Op)))
			}
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list
func (m PickerModel) View() string {
	return docStyle.Render(m.list.View())
}

// Chosen returns the selected operation, or nil when none was chosen
func (m PickerModel) Chosen() *openapi.Operation {
	return m.chosen
}

func details(op *openapi.Operation) string {
	text := op.String()
	if op.Description != "" {
		text += ": " + op.Description
	}
	return text
}

// Pick runs the picker full screen and returns the chosen operation
func Pick(title string, ops []*openapi.Operation) (*openapi.Operation, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("no operations to choose from")
	}

	final, err := tea.NewProgram(NewPickerModel(title, ops), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run operation picker: %w", err)
	}
	chosen := final.(PickerModel).Chosen()
	if chosen == nil {
		return nil, ErrCanceled
	}
	return chosen, nil
}
