/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	serverCmd "github.com/mpapenbr/f1-dashboard-service/pkg/cmd/server"
	snapshotCmd "github.com/mpapenbr/f1-dashboard-service/pkg/cmd/snapshot"
	"github.com/mpapenbr/f1-dashboard-service/pkg/config"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
	"github.com/mpapenbr/f1-dashboard-service/version"
)

const envPrefix = "F1D"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "f1d",
	Short:   "Backend for the F1 telemetry dashboard",
	Long:    ``,
	Version: version.FullVersion,

	// Uncomment the following line if your bare application
	// has an action associated with it:
	// Run: func(cmd *cobra.Command, args []string) { },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Here you will define your flags and configuration settings.
	// Cobra supports persistent flags, which, if defined here,
	// will be global for your application.

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.f1d.yml)")

	rootCmd.PersistentFlags().StringVar(&config.OpenF1URL, "openf1-url",
		openf1.DefaultBaseURL,
		"Base URL of the telemetry API")
	rootCmd.PersistentFlags().StringVar(&config.CacheTTL, "cache-ttl",
		"5s",
		"Lifetime of cached telemetry responses")
	rootCmd.PersistentFlags().StringVar(&config.FetchTimeout, "fetch-timeout",
		"30s",
		"Timeout for fetching the complete dashboard data")
	rootCmd.PersistentFlags().IntVar(&config.SessionYear, "session-year",
		0,
		"Season used to resolve the session (default current year)")
	rootCmd.PersistentFlags().StringVar(&config.SessionName, "session-name",
		openf1.DefaultSessionName,
		"Session name used to resolve the session")
	rootCmd.PersistentFlags().StringVar(&config.WaitForServices,
		"wait-for-services",
		"0s",
		"Duration to wait for the telemetry API (and NATS) to be reachable")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules, e.g. '*:* -debug:openf1.*'")

	// add commands here
	rootCmd.AddCommand(serverCmd.NewServerCmd())
	rootCmd.AddCommand(snapshotCmd.NewSnapshotCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// values from .env files never override the environment
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err == nil {
			fmt.Fprintln(os.Stderr, "Using env file:", f)
		}
	}
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".f1d" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".f1d")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --favorite-color to STING_FAVORITE_COLOR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
