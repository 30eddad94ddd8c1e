package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scenegrid/pkg/core/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the interactive frame browser.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [scene]",
		Short: "Browse the frames of a scene interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := c.buildScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			frames := built.Scene.Frames()
			if len(frames) == 0 {
				printWarning("Scene has no frames")
				return nil
			}
			p := tea.NewProgram(NewFrameListModel(frames), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// FrameListModel - Interactive frame browser
// =============================================================================

// FrameListModel is the bubbletea model for browsing the frames of a scene.
type FrameListModel struct {
	Frames []*scene.Frame
	Cursor int
	Height int
	Offset int
}

// NewFrameListModel creates a new frame list model.
func NewFrameListModel(frames []*scene.Frame) FrameListModel {
	return FrameListModel{
		Frames: frames,
		Height: 10,
	}
}

func (m FrameListModel) Init() tea.Cmd {
	return nil
}

func (m FrameListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Frames)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height/2 - 4
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m FrameListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Frames"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Frames))
	for i := m.Offset; i < end; i++ {
		f := m.Frames[i]
		line := fmt.Sprintf("%s %-24s %s", cursorMark(i == m.Cursor), frameTitle(f), listDimStyle.Render(f.Bounds().String()))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Frames))))
	b.WriteString("\n\n")

	if len(m.Frames) > 0 {
		b.WriteString(layerTable(m.Frames[m.Cursor]))
		b.WriteString("\n")
	}
	return b.String()
}

// layerTable lists the layers of f with their legend status.
func layerTable(f *scene.Frame) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	inLegend := make(map[string]bool)
	for _, label := range f.Legend().Labels() {
		inLegend[label] = true
	}

	var rows [][]string
	for _, l := range f.Layers() {
		legend := "—"
		if inLegend[l.Label] {
			legend = iconSuccess
		}
		rows = append(rows, []string{l.Recipe, l.Label, visualKey(l.Key), legend})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Recipe", "Label", "Key", "Legend").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

// =============================================================================
// Helpers
// =============================================================================

func cursorMark(selected bool) string {
	if selected {
		return "▸"
	}
	return " "
}

func frameTitle(f *scene.Frame) string {
	if f.Title() == "" {
		return "(untitled)"
	}
	return f.Title()
}

func visualKey(k scene.VisualKey) string {
	var parts []string
	if k.Color != "" {
		parts = append(parts, k.Color)
	}
	if k.Line != "" {
		parts = append(parts, "line "+k.Line)
	}
	if k.Marker != "" {
		parts = append(parts, "marker "+k.Marker)
	}
	return strings.Join(parts, " ")
}
