package cli

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

var openArgs string

var openCmd = &cobra.Command{
	Use:   "open <exclusive|panel|overlay> <tag>",
	Short: "Open a template on a layer",
	Long: `Open a new instance of a template.

  exclusive  replaces the current exclusive occupant
  panel      pauses the current top panel and pushes the new one
  overlay    adds to the overlay set`,
	Example: `  uictl open panel inventory --args '{"slot": 3}'
  uictl open exclusive main-menu`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(types.LayerExclusive), string(types.LayerPanel), string(types.LayerOverlay)},
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, err := types.ParseLayer(args[0])
		if err != nil {
			return err
		}
		openerArgs, err := parseArgs(openArgs)
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		info, err := newClient().Open(ctx, layer, args[1], openerArgs)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opened %s on %s: %s\n", info.Tag, info.Layer, info.ID)
		return nil
	},
}

func init() {
	openCmd.Flags().StringVar(&openArgs, "args", "", "JSON object passed to the instance's enter hook")
}

func parseArgs(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]interface{}
	if err := sonic.UnmarshalString(raw, &out); err != nil {
		return nil, fmt.Errorf("--args must be a JSON object: %w", err)
	}
	return out, nil
}
