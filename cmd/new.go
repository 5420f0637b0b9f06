package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/nlsr/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [router name]",
	Short: "Create a router configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return cmd.Usage()
		}
		name, err := state.ParseName(args[0])
		if err != nil {
			return fmt.Errorf("invalid router name: %w", err)
		}
		maxFaces, _ := cmd.Flags().GetInt("max-faces")

		nodeCfg := state.LocalCfg{
			Router:            name,
			MaxFacesPerPrefix: maxFaces,
			Hyperbolic:        state.HyperbolicOff,
			Prefixes:          []state.Name{name},
		}
		state.ExpandLocalConfig(&nodeCfg)
		err = state.NodeConfigValidator(&nodeCfg)
		if err != nil {
			return err
		}

		ncfg, err := yaml.Marshal(&nodeCfg)
		if err != nil {
			return err
		}

		outPath, _ := cmd.Flags().GetString("output")
		return os.WriteFile(outPath, ncfg, 0600)
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringP("output", "o", "node.yaml", "router config output file path")
	newCmd.Flags().Int("max-faces", 0, "max_faces_per_prefix, 1 for single path routing")
}
