package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmswint/plantbeam/pkg/diagram"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// typeHints describe each diagram type in the picker.
var typeHints = map[diagram.Type]string{
	diagram.TypeSequence:   "interactions between participants over time",
	diagram.TypeClass:      "types, fields, and relationships",
	diagram.TypeComponent:  "system components and their wiring",
	diagram.TypeActivity:   "step-by-step flow with decisions",
	diagram.TypeState:      "states and transitions",
	diagram.TypeUsecase:    "actors and what they can do",
	diagram.TypeDeployment: "nodes and artifacts",
	diagram.TypeObject:     "concrete object instances",
	diagram.TypeGeneric:    "plain PlantUML, no assumptions",
}

// typePickerModel is the bubbletea model for interactive diagram type
// selection.
type typePickerModel struct {
	types    []diagram.Type
	cursor   int
	selected diagram.Type
	aborted  bool
}

// newTypePickerModel creates a picker pre-positioned on the type guessed
// from the description text.
func newTypePickerModel(description string) typePickerModel {
	m := typePickerModel{types: diagram.Types}
	guess := diagram.DetectFromProse(description)
	for i, t := range m.types {
		if t == guess {
			m.cursor = i
			break
		}
	}
	return m
}

func (m typePickerModel) Init() tea.Cmd {
	return nil
}

func (m typePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.types)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.types[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m typePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Diagram Type"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, t := range m.types {
		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(string(t)))
		if hint := typeHints[t]; hint != "" {
			b.WriteString(listDimStyle.Render("  - " + hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.types))))
	return b.String()
}

// pickDiagramType runs the interactive type picker and returns the chosen
// type. Quitting without a selection falls back to the prose guess.
func pickDiagramType(description string) (diagram.Type, error) {
	p := tea.NewProgram(newTypePickerModel(description))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("type picker: %w", err)
	}
	m := final.(typePickerModel)
	if m.aborted || m.selected == "" {
		return diagram.DetectFromProse(description), nil
	}
	return m.selected, nil
}
