package internal

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fastogt/fastobuild/internal/build"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List the dependencies fastobuild can build",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := recipeTable(cfg.Recipes)
		if err != nil {
			return err
		}
		renderRecipes(cmd.OutOrStdout(), t, cfg.GitOrg)
		return nil
	},
}

func init() {
	recipesCmd.Flags().String("recipes", "", "TOML file with extra or overriding recipes")
	recipesCmd.Flags().String("git-org", "", "GitHub organization git recipes are cloned from")
	rootCmd.AddCommand(recipesCmd)
}

var recipeWidths = []int{18, 10, 12, 13}

func renderRecipes(w io.Writer, t *build.Table, org string) {
	fmt.Fprintln(w, headerStyle.Render(row(recipeWidths, "NAME", "SOURCE", "STRATEGY", "BUILD SYSTEM", "URL")))
	for _, r := range t.Recipes() {
		bs := r.BuildSystemName()
		if r.Strategy == build.Python {
			bs = mutedStyle.Render("-")
		}
		url := r.SourceURL(org, "{version}")
		fmt.Fprintln(w, row(recipeWidths, r.Name, string(r.Source), string(r.Strategy), bs, url))
	}
}
