package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scenegrid/pkg/core/scene"
	sceneio "github.com/matzehuels/scenegrid/pkg/io"
	"github.com/matzehuels/scenegrid/pkg/pipeline"
)

var (
	treeKindStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	treeSpanStyle   = lipgloss.NewStyle().Foreground(colorGray)
	treeBoundsStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// treeCommand creates the tree command that prints a scene's layout tree.
func (c *CLI) treeCommand() *cobra.Command {
	var bounds bool

	cmd := &cobra.Command{
		Use:   "tree [scene]",
		Short: "Print the layout tree of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := c.buildScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(sceneTree(built.Scene, bounds))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&bounds, "bounds", "b", false, "show resolved bounds")
	return cmd
}

// buildScene parses and lays out a scene file without touching the cache.
func (c *CLI) buildScene(ctx context.Context, path string) (*sceneio.Built, error) {
	logger := loggerFromContext(ctx)
	opts := pipeline.Options{Path: path, Logger: logger}
	doc, _, err := pipeline.Parse(opts)
	if err != nil {
		return nil, err
	}
	return pipeline.BuildScene(ctx, c.newDispatcher(), doc, opts)
}

// sceneTree renders the layout tree of s. Top-level elements outside the
// tree are listed after it.
func sceneTree(s *scene.Scene, bounds bool) string {
	size := s.Size()
	t := tree.Root(StyleTitle.Render(fmt.Sprintf("scene %gx%g", size.W, size.H))).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)

	seen := make(map[string]bool)
	if root := s.Root(); root != nil {
		t.Child(elementTree(root, "", bounds, seen))
	}
	for _, e := range s.Elements() {
		if !seen[e.ID()] {
			t.Child(elementTree(e, "", bounds, seen))
		}
	}
	return t.String()
}

func elementTree(e scene.Element, cell string, bounds bool, seen map[string]bool) any {
	seen[e.ID()] = true
	label := elementLabel(e, cell, bounds)

	g, ok := e.(*scene.Grid)
	if !ok || len(g.Contents()) == 0 {
		return label
	}
	sub := tree.Root(label)
	for _, p := range g.Contents() {
		sub.Child(elementTree(p.Content, p.Span.String(), bounds, seen))
	}
	return sub
}

// elementLabel is a one-line description of e.
func elementLabel(e scene.Element, cell string, bounds bool) string {
	var parts []string
	if cell != "" {
		parts = append(parts, treeSpanStyle.Render(cell))
	}

	switch v := e.(type) {
	case *scene.Grid:
		parts = append(parts, treeKindStyle.Render(fmt.Sprintf("grid %dx%d", v.NumRows(), v.NumCols())))
	case *scene.Frame:
		head := treeKindStyle.Render("frame")
		if v.Title() != "" {
			head += " " + StyleValue.Render(fmt.Sprintf("%q", v.Title()))
		}
		parts = append(parts, head, StyleDim.Render(fmt.Sprintf("%d layers", len(v.Layers()))))
		if labels := v.Legend().Labels(); len(labels) > 0 {
			parts = append(parts, StyleDim.Render("legend: "+strings.Join(labels, ", ")))
		}
	case *scene.TextBlock:
		parts = append(parts, treeKindStyle.Render("text"), StyleValue.Render(fmt.Sprintf("%q", v.Text())))
	case *scene.Surface:
		parts = append(parts, treeKindStyle.Render("surface"), StyleValue.Render(v.Name()))
	default:
		parts = append(parts, treeKindStyle.Render(e.Kind().String()))
	}

	if bounds && e.Placed() {
		parts = append(parts, treeBoundsStyle.Render(e.Bounds().String()))
	}
	return strings.Join(parts, " ")
}
