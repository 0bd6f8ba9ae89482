package cmd

import (
	"fmt"

	"github.com/scalog/wordsender/sender"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Find which candidate port accepts connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := cmd.Flags().GetIntSlice("ports")
		if err != nil {
			return err
		}
		ports := make([]uint16, 0, len(raw))
		for _, p := range raw {
			port, err := toPort(p)
			if err != nil {
				return err
			}
			ports = append(ports, port)
		}
		timeout, err := configDuration("probe-timeout")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		port, err := sender.Probe(viper.GetString("host"), ports, timeout, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Using port %v\n", port)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(probeCmd)
	defaults := make([]int, len(sender.DefaultProbePorts))
	for i, p := range sender.DefaultProbePorts {
		defaults[i] = int(p)
	}
	probeCmd.Flags().IntSlice("ports", defaults, "Ports to try, in order")
	probeCmd.Flags().Duration("timeout", sender.DefaultProbeTimeout, "Connect timeout per port")
	viper.BindPFlag("probe-timeout", probeCmd.Flags().Lookup("timeout"))
}
