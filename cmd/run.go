package cmd

import (
	"github.com/encodeous/nlsr/core"
	"github.com/encodeous/nlsr/state"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run nlsr",
	Long:  `This will run the routing daemon on the current host until it receives SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		debugAddr, _ := cmd.Flags().GetString("debug-addr")
		return core.Bootstrap(state.NodeConfigPath, state.LsdbSnapshotPath, debugAddr, verbose)
	},
	GroupID: "nlsr",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringP("debug-addr", "d", "", "Serve /metrics and /debug/metrics on this address")
}
