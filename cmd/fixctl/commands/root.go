// Package commands implements the fixctl CLI, grounded on
// cmd/dittofs/commands's cobra root and cmd/dittofsctl/commands's
// subcommand layout.
package commands

import (
	"github.com/ForgeFinx/ForgeFIX/cmd/fixctl/commands/store"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "fixctl",
	Short: "Run and inspect a FIX 4.2 buy-side session",
	Long: `fixctl drives a single FIX 4.2 buy-side session engine against a
socket counterparty, or inspects the durable store of a session that has
already run.

Use "fixctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to session settings YAML file")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(store.Cmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the --config flag value shared by all subcommands.
func GetConfigFile() string {
	return cfgFile
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print fixctl version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("fixctl %s (commit %s)\n", Version, Commit)
		return nil
	},
}
