package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uilayers/internal/client"
)

// DefaultHost is used when neither --host nor UICTL_HOST is set
const DefaultHost = "http://localhost:8000"

var (
	// Global flags
	hostURL    string
	jsonOutput bool
	timeout    time.Duration
)

// rootCmd is the root command for uictl.
var rootCmd = &cobra.Command{
	Use:     "uictl",
	Version: "dev",
	Short:   "Control a running UI host",
	Long: `uictl drives the presentation layers of a running UI host.

It opens and closes instances on the exclusive, panel and overlay layers,
manages the template registry, and can follow lifecycle events live.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	defaultHost := os.Getenv("UICTL_HOST")
	if defaultHost == "" {
		defaultHost = DefaultHost
	}

	rootCmd.PersistentFlags().StringVar(&hostURL, "host", defaultHost, "UI host base URL (env UICTL_HOST)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "Request timeout")

	rootCmd.AddCommand(stateCmd, openCmd, closeCmd, resumeCmd, resetCmd, templatesCmd, watchCmd)
}

// SetVersion sets the version reported by --version
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command; ctx cancels in-flight requests and watch
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func newClient() *client.Client {
	return client.New(hostURL)
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// printJSON writes v indented to w
func printJSON(w io.Writer, v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// FormatError renders err for the terminal
func FormatError(err error) string {
	return errorStyle.Render("Error: " + err.Error())
}
