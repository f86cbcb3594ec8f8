package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

var closeCmd = &cobra.Command{
	Use:   "close <instance-id|top|all|exclusive>",
	Short: "Close an instance or a group of instances",
	Long: `Close a single instance by id, or use a shortcut:

  top        pop the top panel and resume the one beneath
  all        empty the panel stack
  exclusive  empty the exclusive slot`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		c := newClient()
		out := cmd.OutOrStdout()

		var (
			resp *types.CloseResponse
			err  error
		)
		switch args[0] {
		case "all":
			n, err := c.CloseAllPanels(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Closed %d panel(s)\n", n)
			return nil
		case "top":
			resp, err = c.CloseTopPanel(ctx)
		case "exclusive":
			resp, err = c.CloseExclusive(ctx)
		default:
			if err := c.Close(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Closed %s\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(out, resp)
		}
		if !resp.Success {
			fmt.Fprintln(out, "Nothing to close")
			return nil
		}
		fmt.Fprintf(out, "Closed %s\n", resp.InstanceID)
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a top panel left paused by a failed open",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		resumed, err := newClient().ResumeTopPanel(ctx)
		if err != nil {
			return err
		}
		if resumed {
			fmt.Fprintln(cmd.OutOrStdout(), "Top panel resumed")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Top panel was not paused")
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Close every instance on every layer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		n, err := newClient().Reset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Closed %d instance(s)\n", n)
		return nil
	},
}
