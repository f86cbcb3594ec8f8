package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uilayers/internal/client"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show what is open on every layer",
	Long:  `Print the exclusive occupant, the panel stack (top first) and open overlays.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		state, err := newClient().State(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), state)
		}
		renderState(cmd.OutOrStdout(), state)
		return nil
	},
}

func renderState(w io.Writer, state *client.State) {
	renderLayers(w, state.State)

	s := state.Stats
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(
		"opened %d  closed %d  construct failures %d", s.Opened, s.Closed, s.ConstructFailures)))
}

func renderLayers(w io.Writer, snap types.Snapshot) {
	fmt.Fprintln(w, headerStyle.Render("Exclusive"))
	if snap.Exclusive == nil {
		fmt.Fprintln(w, mutedStyle.Render("  (empty)"))
	} else {
		fmt.Fprintln(w, "  "+formatInstance(*snap.Exclusive))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Panels (%d)", len(snap.Panels))))
	if len(snap.Panels) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (empty)"))
	}
	for i := len(snap.Panels) - 1; i >= 0; i-- {
		fmt.Fprintln(w, "  "+formatInstance(snap.Panels[i]))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Overlays (%d)", len(snap.Overlays))))
	if len(snap.Overlays) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (empty)"))
	}
	for _, o := range snap.Overlays {
		fmt.Fprintln(w, "  "+formatInstance(o))
	}
}

func formatInstance(info types.InstanceInfo) string {
	var b strings.Builder
	b.WriteString(stateStyle(info.State).Render(fmt.Sprintf("%-9s", info.State)))
	b.WriteString(" ")
	b.WriteString(tagStyle.Render(info.Tag))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(info.ID))
	return b.String()
}
