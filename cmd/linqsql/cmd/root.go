package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linqsql/linqsql/cmd/linqsql/cmd/tosql"
)

var (
	Version string
	Commit  string
	Date    string
)

var rootCmd = &cobra.Command{
	Use:   "linqsql",
	Short: "linqsql compiler CLI",
	Long:  `A command-line driver for the linqsql builder-to-SQL compiler.`,
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(Banner + fmt.Sprintf("\nVersion: %s | Commit: %s | Built: %s\n", Version, Commit, Date))

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}

func init() {
	setupHelpColors(rootCmd)

	rootCmd.AddCommand(tosql.Command())

	for _, c := range rootCmd.Commands() {
		setupHelpColors(c)
	}
}
