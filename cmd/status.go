package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/atelier/internal/config"
	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/store"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and saved conversations",
		Long: `Display the current atelier status including:
  - Configuration and data locations
  - Gateway models and whether an API key is set
  - Generation defaults
  - Saved conversations per kind`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	a.out.Title("Atelier Status")
	a.out.Plain("%s", strings.Repeat("─", 40))

	a.out.Plain("Config File: %s", config.GlobalConfigPath())
	a.out.Plain("Data Directory: %s", cfg.DataDir())
	storePath := store.Path(cfg.Store.Driver, cfg.DataDir())
	if storePath == "" {
		storePath = "(in memory)"
	}
	a.out.Plain("Store: %s (%s)", cfg.Store.Driver, storePath)
	a.out.Plain("")

	a.out.Plain("Gateway:")
	if config.NeedsSetup(cfg) {
		a.out.Warn("  API Key: Not configured (set GEMINI_API_KEY)")
	} else {
		a.out.Plain("  API Key: configured")
	}
	a.out.Plain("  Chat: %s", cfg.Gateway.ChatModel)
	a.out.Plain("  Analysis: %s", cfg.Gateway.AnalysisModel)
	a.out.Plain("  Edit: %s", cfg.Gateway.EditModel)
	a.out.Plain("")

	a.out.Plain("Generation Defaults:")
	a.out.Plain("  %s", describeParams(cfg.GenerationParams()))
	a.out.Plain("")

	summaries, err := a.library.List(cmd.Context())
	if err != nil {
		return err
	}
	counts := make(map[conversation.Kind]int)
	favorites := 0
	for _, s := range summaries {
		counts[s.Kind]++
		if s.IsFavorite {
			favorites++
		}
	}
	a.out.Plain("Conversations: %d (%d favorite)", len(summaries), favorites)
	for _, k := range conversation.Kinds() {
		a.out.Plain("  %s: %d", k, counts[k])
	}

	return nil
}
