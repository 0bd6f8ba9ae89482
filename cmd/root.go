package cmd

import (
	"io"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/scalog/wordsender/logger"
	"github.com/scalog/wordsender/listener"
	"github.com/scalog/wordsender/pkg/address"
	"github.com/scalog/wordsender/sender"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// RootCmd runs the interactive sender when no subcommand is given.
var RootCmd = &cobra.Command{
	Use:   "wordsender",
	Short: "Send words to a line-based TCP listener",
	Long: `wordsender reads words from the console and delivers each one,
newline-terminated, on its own TCP connection to a listener such as a
game engine command port.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.SetLevel(viper.GetString("log-level"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd)
	},
}

// Execute runs RootCmd and exits non-zero on error.
func Execute() {
	defer log.Sync()
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults()
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wordsender.yaml)")
	RootCmd.PersistentFlags().String("host", "", "Target host; prompts when empty")
	RootCmd.PersistentFlags().IntP("port", "p", address.DefaultPort, "Target port")
	RootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	viper.BindPFlag("host", RootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("port", RootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log-level", RootCmd.PersistentFlags().Lookup("log-level"))
}

func setDefaults() {
	viper.SetDefault("host", "")
	viper.SetDefault("port", address.DefaultPort)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("stream-delay", sender.DefaultStreamDelay)
	viper.SetDefault("probe-timeout", sender.DefaultProbeTimeout)
	viper.SetDefault("send-probe", false)
	viper.SetDefault("listen-addr", listener.DefaultAddr)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			log.Debugf("no home directory: %v", err)
		} else {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".wordsender")
	}
	viper.SetEnvPrefix("wordsender")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			log.Fatalf("read config file error: %v", err)
		}
		return
	}
	log.Debugf("using config file %v", viper.ConfigFileUsed())
}

func configPort() (uint16, error) {
	return toPort(viper.GetInt("port"))
}

func toPort(p int) (uint16, error) {
	if p < 1 || p > 65535 {
		return 0, errors.Errorf("port %v out of range", p)
	}
	return uint16(p), nil
}

func configDuration(key string) (time.Duration, error) {
	d := viper.GetDuration(key)
	if d < 0 {
		return 0, errors.Errorf("%v must not be negative, got %v", key, d)
	}
	return d, nil
}
