package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/treasuremap/pkg/graph"
)

// errPickCancelled is returned when the user leaves the picker without
// choosing.
var errPickCancelled = errors.New("selection cancelled")

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listFilterStyle = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// PackagePicker - Interactive crate selection
// =============================================================================

// pickerItem is one crate name with every version present in the graph.
type pickerItem struct {
	Name     string
	Versions []string
}

// PackagePicker is the bubbletea model for choosing a crate by name.
// Typing narrows the list to names containing the filter text.
type PackagePicker struct {
	Title    string
	Items    []pickerItem
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected string

	visible []int
}

// newPackagePicker lists the crates of g, sorted by name, leaving out
// exclude.
func newPackagePicker(title string, g *graph.Graph, exclude string) PackagePicker {
	byName := map[string]int{}
	var items []pickerItem
	for _, n := range g.Nodes() {
		if n.Name == exclude {
			continue
		}
		if i, ok := byName[n.Name]; ok {
			items[i].Versions = append(items[i].Versions, n.Version)
			continue
		}
		byName[n.Name] = len(items)
		items = append(items, pickerItem{Name: n.Name, Versions: []string{n.Version}})
	}
	slices.SortFunc(items, func(a, b pickerItem) int { return strings.Compare(a.Name, b.Name) })

	m := PackagePicker{Title: title, Items: items, Height: 15}
	m.refilter()
	return m
}

func (m *PackagePicker) refilter() {
	m.visible = make([]int, 0, len(m.Items))
	needle := strings.ToLower(m.Filter)
	for i, it := range m.Items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.Cursor = 0
	m.Offset = 0
}

func (m PackagePicker) Init() tea.Cmd {
	return nil
}

func (m PackagePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.visible) == 0 {
				return m, nil
			}
			m.Selected = m.Items[m.visible[m.Cursor]].Name
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.Filter = string(r[:len(r)-1])
				m.refilter()
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.refilter()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PackagePicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	b.WriteString(listFilterStyle.Render("> " + m.Filter))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matching crates"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, it.Name, strings.Join(it.Versions, ", ")})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Crate", "Versions").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			isCurrent := m.Offset+row == m.Cursor
			switch {
			case isCurrent && col == 2:
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			case isCurrent:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorDim)
			default:
				return lipgloss.NewStyle()
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))

	return b.String()
}

// pickPackage runs the picker and returns the chosen crate name.
func pickPackage(ctx context.Context, title string, g *graph.Graph, exclude string) (string, error) {
	p := tea.NewProgram(newPackagePicker(title, g, exclude), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	m, ok := final.(PackagePicker)
	if !ok || m.Selected == "" {
		return "", errPickCancelled
	}
	return m.Selected, nil
}
