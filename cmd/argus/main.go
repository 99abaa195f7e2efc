package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"argus/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "Argus whole-program static type analyzer",
	Long:  `Argus performs whole-program gradual type analysis over a scanned codebase`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("config", "argus.toml", "path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
