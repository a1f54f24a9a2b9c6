// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/urdfkit/urdfkit/internal/issue"

	"github.com/spf13/cobra"
)

func newExplainCommand(app *App) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "explain [problem]",
		Short: "Explain a problem reported by urdfkit",
		Long: `Print a detailed explanation of a problem, with examples and things to try.
Without an argument, list every problem urdfkit can explain.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			slugs := make([]string, 0, len(issue.Values()))
			for _, i := range issue.Values() {
				slugs = append(slugs, i.Slug())
			}
			return slugs, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.stdout, TitleStyle.Render("Problems urdfkit can explain:"))
				for _, i := range issue.Values() {
					fmt.Fprintf(app.stdout, "  %s\n", NameStyle.Render(i.Slug()))
				}
				return nil
			}

			i := issue.GetBySlug(args[0])
			if i == nil {
				return issue.NewErrorContext().
					WithOperation("explain problem").
					WithResource(args[0]).
					WithSuggestion("Run 'urdfkit explain' to list known problems").
					Wrap(fmt.Errorf("unknown problem %q", args[0])).
					BuildError()
			}
			out, err := i.Render(style)
			if err != nil {
				return fmt.Errorf("failed to render explanation: %w", err)
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style: dark, light, notty, ascii, or a JSON style file")
	return cmd
}
