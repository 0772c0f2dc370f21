package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sopflow",
	Short: "SOP working-copy review and merge service",
	Example: `sopflow serve
sopflow db migrate
sopflow doc create -t <title> -c <content>
sopflow doc get -d <doc-id>
sopflow copy create -d <doc-id>
sopflow copy submit -w <copy-id> -r <reviewer-id> -s <summary>
sopflow copy decide -w <copy-id> -r <review-id> --status approved`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serveCmd())
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
