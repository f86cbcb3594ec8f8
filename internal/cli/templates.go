package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uilayers/internal/domain/registry"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
	"github.com/GriffinCanCode/uilayers/internal/shared/utils"
)

var templatesKind string

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tmpl"},
	Short:   "List and manage registered templates",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		list, err := newClient().Templates(ctx, types.TemplateKind(templatesKind))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), list)
		}

		tbl := table.New().
			Border(lipgloss.HiddenBorder()).
			Headers("TAG", "KIND", "LAYERS", "TITLE").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return lipgloss.NewStyle()
			})
		for _, t := range list.Templates {
			tbl.Row(t.Tag, string(t.Kind), formatLayers(t.Layers), t.Title)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <tag>",
	Short: "Print one template in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		tmpl, err := newClient().Template(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), tmpl)
	},
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Register every template in a catalog file (yaml, toml or json)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		tmpls, err := registry.Parse(args[0], data)
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		c := newClient()
		for _, tmpl := range tmpls {
			stored, err := c.Register(ctx, tmpl)
			if err != nil {
				return fmt.Errorf("%s: %w", tmpl.Tag, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", stored.Tag, utils.ShortHash(stored.Revision))
		}
		return nil
	},
}

var templatesRmCmd = &cobra.Command{
	Use:   "rm <tag>",
	Short: "Unregister a template; open instances stay open",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		if err := newClient().Unregister(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var templatesReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the host's template catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		res, err := newClient().Reload(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	templatesCmd.Flags().StringVar(&templatesKind, "kind", "", "Only list templates of this kind")
	templatesCmd.AddCommand(templatesShowCmd, templatesAddCmd, templatesRmCmd, templatesReloadCmd)
}

func formatLayers(layers []types.Layer) string {
	if len(layers) == 0 {
		return "any"
	}
	parts := make([]string, len(layers))
	for i, l := range layers {
		parts[i] = string(l)
	}
	return strings.Join(parts, ",")
}
