package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scalog/wordsender/listener"
	log "github.com/scalog/wordsender/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run a local line-based listener for testing",
	Long:  `Accepts commands the way the engine does, logs their raw bytes and echoes "Received: <command>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		l := listener.NewListener(viper.GetString("listen-addr"), func(command string) {
			fmt.Fprintf(out, "TCP listener received: %q\n", command)
		})
		if err := l.Start(); err != nil {
			return err
		}
		defer l.Close()

		sigC := make(chan os.Signal, 1)
		signal.Notify(sigC, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigC)
		go func() {
			<-sigC
			log.Infof("shutting down listener")
			l.Close()
		}()

		if err := l.Serve(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(listenCmd)
	listenCmd.Flags().StringP("addr", "a", listener.DefaultAddr, "Address to listen on")
	viper.BindPFlag("listen-addr", listenCmd.Flags().Lookup("addr"))
}
