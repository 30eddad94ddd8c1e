package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scenegrid/pkg/core/recipe"
)

// recipesCommand creates the command that lists the registered recipes.
func (c *CLI) recipesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the available recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(recipeTable(c.newDispatcher().Registry()))
			printNextStep("Render a scene", appName+" render scene.toml")
			return nil
		},
	}
}

// recipeTable renders reg as a bordered table.
func recipeTable(reg *recipe.Registry) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(colorCyan)
	cellStyle := lipgloss.NewStyle().Foreground(colorWhite)

	var rows [][]string
	for _, r := range reg.List() {
		rows = append(rows, []string{r.Name, r.Arity.String(), r.Trait.String(), r.Description})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Recipe", "Arity", "Trait", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return nameStyle.Padding(0, 1)
			default:
				return cellStyle.Padding(0, 1)
			}
		})
	return t.Render()
}
