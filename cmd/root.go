package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "phocaforme",
	Short: "Trade photo cards from the terminal",
	Long: `phocaforme is a CLI and TUI client for the phocaforme photo card marketplace.

Features:
- View listings and keep a short history of recently viewed cards
- Compose new listings with image previews that load in the background
- Delete or bump your own listings

Examples:
  phocaforme view 42
  phocaforme recent
  phocaforme compose --title "Minji POB" --card-type album ./cards/*.jpg
  phocaforme compose -i`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.phocaforme.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".phocaforme")
		viper.SetConfigType("yaml")
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
