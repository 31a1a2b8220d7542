// Package commands implements the netkitd CLI: cobra commands for
// starting and stopping the daemon and managing its configuration.
package commands

import (
	"os"

	configcmd "github.com/netkitd/netkitd/cmd/netkitd/commands/config"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "netkitd",
	Short: "netkitd - NFSv4 server with a per-client subnet manager",
	Long: `netkitd serves a single exported filesystem tree over NFSv4 and runs
a companion subnet manager that allocates and tears down isolated networks
on request over its HTTP API, and removes its own networks on shutdown.

Use "netkitd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/netkitd/config.yaml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
