// Package commands implements the CLI commands for hp-drivers-scraper.
package commands

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgl/hp-drivers-scraper/internal/logger"
)

const envPrefix = "HP_DRIVERS_SCRAPER"

var rootCmd = &cobra.Command{
	Use:   "hp-drivers-scraper",
	Short: "Scrape driver and firmware versions from HP support pages",
	Long: `hp-drivers-scraper drives a headless Chrome through the HP support
driver pages of a few products and saves the listed downloads (name, URL,
version and release date) as data files, plus a screenshot of each page.

Examples:
  # Scrape every configured product into ./data
  hp-drivers-scraper scrape

  # Watch the browser do its thing
  hp-drivers-scraper scrape --debug

  # Only one product, as YAML
  hp-drivers-scraper scrape --product hp-elitedesk-800-35w-g2-desktop-mini-pc --format yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.hp-drivers-scraper.yaml)")
	flags.Bool("debug", false, "enable debug logging and run the browser in the foreground")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.String("log-format", "text", "log format: text, json")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".hp-drivers-scraper")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Warn("failed to read config file", "error", err)
		}
		return
	}
	logger.Debug("config file loaded", "path", viper.ConfigFileUsed())
}

func initLogger() error {
	format, err := logger.ParseFormat(viper.GetString("log_format"))
	if err != nil {
		return err
	}
	logger.Init(logger.Options{
		Debug:  viper.GetBool("debug"),
		Quiet:  viper.GetBool("quiet"),
		Format: format,
	})
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
