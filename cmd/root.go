package cmd

import (
	"os"

	"github.com/encodeous/nlsr/state"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nlsr",
	Short: "Named-data Link State Routing",
	Long: `nlsr computes routes for a named-data network.
It turns the link state database into a next hop list for every advertised name prefix, using either
link-state (Dijkstra) or hyperbolic routing.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Initialize NLSR",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "nlsr",
		Title: "NLSR Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&state.NodeConfigPath, "node-config", "n", state.NodeConfigPath, "router config")
	rootCmd.PersistentFlags().StringVarP(&state.LsdbSnapshotPath, "lsdb", "l", state.LsdbSnapshotPath, "lsdb snapshot, overrides lsdb_snapshot in the router config")
}
