package cmd

import (
	"fmt"

	"github.com/encodeous/nlsr/core"
	"github.com/encodeous/nlsr/state"
	"github.com/spf13/cobra"
)

// controlSocket resolves the --socket flag, falling back to the control socket in the router config
func controlSocket(cmd *cobra.Command) (string, error) {
	socket, _ := cmd.Flags().GetString("socket")
	if socket == "" {
		ncfg, err := core.ReadNodeConfig(state.NodeConfigPath)
		if err != nil {
			return "", err
		}
		socket = ncfg.ControlSocket
	}
	if socket == "" {
		return "", fmt.Errorf("no control socket, set control_socket in the router config or pass --socket")
	}
	return socket, nil
}

func prefixCommand(verb string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		prefix, err := state.ParseName(args[0])
		if err != nil {
			return err
		}
		socket, err := controlSocket(cmd)
		if err != nil {
			return err
		}
		result, err := core.IPCGet(socket, verb+" "+prefix.String())
		if err != nil {
			return err
		}
		fmt.Print(result)
		return nil
	}
}

var advertiseCmd = &cobra.Command{
	Use:     "advertise <prefix>",
	Short:   "Advertises a name prefix from a running router",
	Args:    cobra.ExactArgs(1),
	RunE:    prefixCommand("advertise"),
	GroupID: "nlsr",
}

var withdrawCmd = &cobra.Command{
	Use:     "withdraw <prefix>",
	Short:   "Withdraws a name prefix advertised by a running router",
	Args:    cobra.ExactArgs(1),
	RunE:    prefixCommand("withdraw"),
	GroupID: "nlsr",
}

func init() {
	rootCmd.AddCommand(advertiseCmd)
	rootCmd.AddCommand(withdrawCmd)
	advertiseCmd.Flags().StringP("socket", "s", "", "control socket of the router, defaults to control_socket in the router config")
	withdrawCmd.Flags().StringP("socket", "s", "", "control socket of the router, defaults to control_socket in the router config")
}
