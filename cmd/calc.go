package cmd

import (
	"fmt"
	"log/slog"

	"github.com/encodeous/nlsr/core"
	"github.com/encodeous/nlsr/state"
	"github.com/spf13/cobra"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate routes once from an lsdb snapshot and print the resulting tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		nodeCfg, err := core.ReadNodeConfig(state.NodeConfigPath)
		if err != nil {
			return err
		}
		snapPath := state.LsdbSnapshotPath
		if snapPath == "" {
			snapPath = nodeCfg.LsdbSnapshot
		}
		if snapPath == "" {
			return fmt.Errorf("no lsdb snapshot given, use --lsdb")
		}
		snap, err := core.ReadLsdbSnapshot(snapPath)
		if err != nil {
			return err
		}
		logger, err := core.NewLogger(nodeCfg, level)
		if err != nil {
			return err
		}

		fib := core.NewForwardingTable(logger, core.LogRegistrar{Log: logger}, nodeCfg.MaxFacesPerPrefix)
		r, err := core.CalculateOnce(*nodeCfg, snap, logger, fib)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Routing Table (%s)\n", nodeCfg.Router)
		fmt.Fprintln(out, core.RenderRoutingTable(r.Rt.Entries()))
		if nodeCfg.Hyperbolic == state.HyperbolicDryRun {
			fmt.Fprintln(out, "Dry-Run Hyperbolic Routing Table")
			fmt.Fprintln(out, core.RenderRoutingTable(r.Rt.DryRunEntries()))
		}
		fmt.Fprintln(out, "Name Prefix Table")
		fmt.Fprintln(out, core.RenderNamePrefixTable(r.Npt.Entries()))
		fmt.Fprintln(out, "FIB")
		fmt.Fprintln(out, core.RenderFib(fib.Entries()))
		return nil
	},
	GroupID: "nlsr",
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
}
