// Package cli implements the Cobra-based command-line front end over the
// command surface: index start|stop|status, search, embed generate|status,
// and export context|package|preview.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when cortex is invoked with no subcommand.
var rootCmd = &cobra.Command{
	Use:   "cortex",
	Short: "Cortex is a local, offline personal knowledge indexer",
	Long: `Cortex watches filesystem roots, extracts text from heterogeneous
document formats, maintains a full-text and vector index, and answers
lexical and semantic queries against it.`,
}

// Execute adds all child commands to rootCmd and runs it. Called once from
// main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .cortex/config.yml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil && verbose {
			fmt.Fprintf(os.Stderr, "warning: failed to read config file %s: %v\n", cfgFile, err)
		}
	}
}
