package main

import (
	"fmt"

	"github.com/matsen/vocabmap/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  vocabmap config                              # Show all config
  vocabmap config ollama_url                   # Get specific value
  vocabmap config ollama_url http://host:11434 # Set value

Keys:
  sessions_root  Directory holding session data (default ~/vocabmap_sessions)
  ollama_url     Ollama base URL (default http://localhost:11434)
  ollama_model   Embedding model name (default nomic-embed-text)
  dimensions     Embedding vector size (default 768)
  rate_limit     Embedding requests per second (default 20)

Environment variables VOCABMAP_SESSIONS, OLLAMA_URL and OLLAMA_MODEL
override the config file at runtime. 'config set' always writes the file.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	// No args: show all config.
	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.Keys() {
				value, _ := cfg.Get(key)
				fmt.Printf("%-14s %s\n", key+":", value)
			}
			fmt.Printf("\nConfig file: %s\n", config.Path())
		} else {
			values := make(map[string]string, len(config.Keys()))
			for _, key := range config.Keys() {
				values[key], _ = cfg.Get(key)
			}
			outputJSON(values)
		}
		return nil
	}

	key := args[0]

	// One arg: get specific value.
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value. Edit the raw file so environment overrides
	// applied at load time never leak into the saved config.
	value := args[1]
	fileCfg, err := config.LoadFile()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := fileCfg.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := fileCfg.Save(); err != nil {
		exitWithError(ExitConfigError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}

	return nil
}
