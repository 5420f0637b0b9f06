package cmd

import (
	"fmt"

	"github.com/encodeous/nlsr/core"
	"github.com/encodeous/nlsr/state"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validates the router config and, if given, the lsdb snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		nodeCfg, err := core.ReadNodeConfig(state.NodeConfigPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Router config for %s is valid\n", nodeCfg.Router)

		snapPath := state.LsdbSnapshotPath
		if snapPath == "" {
			snapPath = nodeCfg.LsdbSnapshot
		}
		if snapPath == "" {
			return nil
		}
		snap, err := core.ReadLsdbSnapshot(snapPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Lsdb snapshot is valid, %d lsas\n", len(snap.Lsas))
		return nil
	},
	GroupID: "nlsr",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
