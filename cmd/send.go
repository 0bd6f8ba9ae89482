package cmd

import (
	"github.com/scalog/wordsender/sender"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Interactively send words, one connection per word",
	Long:  `Prompts for the target host once, then sends every word typed until 'exit'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd)
	},
}

func init() {
	RootCmd.AddCommand(sendCmd)
	sendCmd.Flags().Bool("probe", false, "Find an open port among the default candidates before sending")
	viper.BindPFlag("send-probe", sendCmd.Flags().Lookup("probe"))
}

func runSend(cmd *cobra.Command) error {
	port, err := configPort()
	if err != nil {
		return err
	}
	cfg := sender.Config{
		Host: viper.GetString("host"),
		Port: port,
		In:   stdin,
		Out:  cmd.OutOrStdout(),
	}
	if viper.GetBool("send-probe") {
		timeout, err := configDuration("probe-timeout")
		if err != nil {
			return err
		}
		cfg.ProbePorts = sender.DefaultProbePorts
		cfg.ProbeTimeout = timeout
	}
	s := sender.NewSender(cfg)
	return s.Run()
}
