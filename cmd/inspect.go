package cmd

import (
	"fmt"

	"github.com/encodeous/nlsr/core"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect [inspect|adjacencies|lsdb|routes|prefixes|fib]",
	Aliases: []string{"i"},
	Short:   "Inspects the current state of a running router",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		socket, err := controlSocket(cmd)
		if err != nil {
			return err
		}
		what := "inspect"
		if len(args) == 1 {
			what = args[0]
		}
		result, err := core.IPCGet(socket, what)
		if err != nil {
			return err
		}
		fmt.Print(result)
		return nil
	},
	GroupID: "nlsr",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("socket", "s", "", "control socket of the router, defaults to control_socket in the router config")
}
