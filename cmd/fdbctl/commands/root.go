// Package commands implements the CLI commands for fdbctl.
package commands

import (
	"time"

	"github.com/marmos91/fdb-go/cmd/fdbctl/cmdutil"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fdbctl",
	Short: "Interact with an fdb-go database from the command line",
	Long: `fdbctl is a command-line client for the fdb-go store.

It talks to the same native layer the pkg/fdb client library uses, so
every command runs through the ordinary read/write transaction path and
its retry loop.

Use "fdbctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ClusterFile, _ = cmd.Flags().GetString("cluster-file")
		cmdutil.Flags.Mock, _ = cmd.Flags().GetBool("mock")
		cmdutil.Flags.Timeout, _ = cmd.Flags().GetDuration("timeout")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
	},
}

func init() {
	rootCmd.PersistentFlags().String("cluster-file", "", "path to a cluster file describing the store's coordinators")
	rootCmd.PersistentFlags().Bool("mock", false, "force the in-memory mock handler (default when --cluster-file is unset)")
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Second, "end-to-end timeout for the retry loop")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json, yaml")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
