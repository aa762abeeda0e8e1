// Package main provides the vocabmap CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// sessionsRoot optionally overrides the configured sessions directory
var sessionsRoot string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vocabmap",
	Short: "Human-assisted clinical vocabulary mapping",
	Long: `vocabmap maps local clinical vocabularies to standard terminologies.

It seeds candidate matches by embedding similarity, records human
confirmation decisions in durable session directories, and assigns
canonical concept IDs across fully mapped sessions for OMOP-style
export. All commands output JSON by default for easy integration with
other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&sessionsRoot, "sessions", "", "Sessions directory (overrides config)")
	rootCmd.Version = Version
}
