package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	appver "bite/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print bite version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appver.AppVersion)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}
