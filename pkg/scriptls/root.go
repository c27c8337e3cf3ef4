package scriptls

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptls/scriptls/pkg/scriptls/commands"
)

// rootCmd represents the base command when called without any subcommands
func BuildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scriptls",
		Short: "Script Language Server",
	}

	rootCmd.AddCommand(commands.BuildServeCmd())
	rootCmd.AddCommand(commands.BuildCheckCmd())
	//+cobra:subcommands

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := BuildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
