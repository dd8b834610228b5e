// Package cmd provides the CLI commands for atelier.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/guilhermegouw/atelier/internal/config"
	"github.com/guilhermegouw/atelier/internal/debug"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atelier",
		Short: "Chat, generate and edit images with Gemini",
		Long: `Atelier is a terminal client for Gemini that keeps every interaction
as a resumable conversation.

It supports three kinds of conversation:
  - chat:     free-form chat with a language model
  - generate: batch image generation from a prompt
  - edit:     iterative editing of an uploaded image`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging to <data dir>/debug.log")
	cmd.PersistentFlags().String("config", "", "Read configuration from this file only")

	cmd.AddCommand(
		newChatCmd(),
		newGenerateCmd(),
		newEditCmd(),
		newRecallCmd(),
		newListCmd(),
		newShowCmd(),
		newFavoriteCmd(),
		newRemoveCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return cmd
}

// setup loads .env and the configuration, and enables debug logging.
func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load .env: %v\n", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	debugMode, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("getting debug flag: %w", err)
	}
	if debugMode || cfg.Options.Debug {
		logPath := cfg.DebugLogPath()
		if debugErr := debug.Enable(logPath); debugErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to enable debug logging: %v\n", debugErr)
		} else {
			fmt.Fprintf(os.Stderr, "Debug: %s\n", logPath)
		}
	}

	cmd.SetContext(withConfig(cmd.Context(), cfg))
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("getting config flag: %w", err)
	}
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	defer debug.Disable()
	return newRootCmd().Execute()
}
