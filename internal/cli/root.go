// Package cli implements BiTE's command-line entry point: a Cobra root
// command that launches the presenter by default, plus a `serve`
// subcommand for the web attach point, following the teacher's
// SilenceUsage/SilenceErrors root-command pattern.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bite/internal/app"
	"bite/internal/system"
)

var (
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "bite",
	Short: "bite – bash-integrated terminal emulator",
	Long:  "bite hosts an xterm-compatible terminal screen and a session/job multiplexer behind a single TUI.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevel != "" {
			system.SetLevel(logLevel)
		}
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return err
			}
			system.Redirect(f)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Start()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "path to write logs to (default stderr)")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
