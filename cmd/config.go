package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"phocaforme/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config to $HOME/.phocaforme.yaml",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.GetConfigPath()
		if err != nil {
			logrus.Fatal(err)
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			logrus.Fatalf("Config already exists at %s (use --force to overwrite)", path)
		}
		if err := config.CreateDefaultConfig(); err != nil {
			logrus.Fatalf("Failed to write config: %v", err)
		}
		logrus.Infof("Wrote default config to %s", path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			logrus.Fatal(err)
		}
		token := "(not set)"
		if cfg.AuthToken != "" {
			token = "(set)"
		}

		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "api_url:\t%s\n", cfg.APIURL)
		fmt.Fprintf(tw, "auth_token:\t%s\n", token)
		fmt.Fprintf(tw, "request_timeout:\t%ds\n", cfg.RequestTimeout)
		fmt.Fprintf(tw, "storage_backend:\t%s\n", cfg.StorageBackend)
		fmt.Fprintf(tw, "data_dir:\t%s\n", cfg.DataDir)
		fmt.Fprintf(tw, "max_image_size:\t%d\n", cfg.MaxImageSize)
		fmt.Fprintf(tw, "preview_max_dimension:\t%d\n", cfg.PreviewMaxDimension)
		fmt.Fprintf(tw, "decode_timeout:\t%ds\n", cfg.DecodeTimeout)
		fmt.Fprintf(tw, "default_directory:\t%s\n", cfg.DefaultDirectory)
		fmt.Fprintf(tw, "enable_logging:\t%t\n", cfg.EnableLogging)
		fmt.Fprintf(tw, "log_level:\t%s\n", cfg.LogLevel)
		tw.Flush()

		if err := config.ValidateConfig(cfg); err != nil {
			logrus.Warnf("Config is invalid: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config")
}
