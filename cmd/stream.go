package cmd

import (
	"fmt"

	"github.com/scalog/wordsender/pkg/address"
	"github.com/scalog/wordsender/sender"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// streamCmd represents the stream command
var streamCmd = &cobra.Command{
	Use:   "stream <word>...",
	Short: "Send a sequence of words with a delay between them",
	Long:  `Sends each word on its own connection, in order, and stops at the first failure.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := configPort()
		if err != nil {
			return err
		}
		delay, err := configDuration("stream-delay")
		if err != nil {
			return err
		}
		ep := address.NewEndpoint(viper.GetString("host"), port)
		out := cmd.OutOrStdout()
		words := sender.Words(args)
		fmt.Fprintf(out, "Streaming %v words to %v\n", len(words), ep)

		report, err := sender.Stream(ep, words, delay)
		fmt.Fprintf(out, "Sent %v words (latency mean %v, stddev %v)\n", report.Sent, report.Mean(), report.StdDev())
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(streamCmd)
	streamCmd.Flags().DurationP("delay", "d", sender.DefaultStreamDelay, "Delay between words")
	viper.BindPFlag("stream-delay", streamCmd.Flags().Lookup("delay"))
}
