package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/atelier/internal/config"
	"github.com/guilhermegouw/atelier/internal/debug"
	"github.com/guilhermegouw/atelier/internal/gateway"
	"github.com/guilhermegouw/atelier/internal/gateway/gemini"
	"github.com/guilhermegouw/atelier/internal/pubsub"
	"github.com/guilhermegouw/atelier/internal/render"
	"github.com/guilhermegouw/atelier/internal/session"
	"github.com/guilhermegouw/atelier/internal/store"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.NewConfig()
}

// app holds what a command needs: the store, the event hub and, for
// commands that call the model, the gateway.
type app struct {
	cfg     *config.Config
	store   *store.Shared
	hub     *pubsub.Hub
	gateway *gateway.Safe
	out     *render.Printer
	library *session.Library
}

// openApp opens the configured store. With withGateway set it also creates
// the Gemini client, failing when no API key is configured.
func openApp(cmd *cobra.Command, withGateway bool) (*app, error) {
	ctx := cmd.Context()
	cfg := configFrom(ctx)

	if err := os.MkdirAll(cfg.DataDir(), 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	st, err := store.Open(cfg.Store.Driver, cfg.DataDir())
	if err != nil {
		return nil, err
	}

	var hubOpts []pubsub.HubOption
	if debug.IsEnabled() {
		// The debug log is the session's audit trail: never drop from it.
		hubOpts = append(hubOpts, pubsub.WithLosslessDelivery())
	}
	a := &app{
		cfg:   cfg,
		store: st,
		hub:   pubsub.NewHub(hubOpts...),
		out:   render.NewPrinter(cmd.OutOrStdout(), render.DefaultWidth),
	}
	a.library = session.NewLibrary(st, a.hub.Conversation)
	a.watch(ctx)

	if withGateway {
		if config.NeedsSetup(cfg) {
			a.Close()
			return nil, errors.New("no API key configured: set GEMINI_API_KEY or gateway.api_key in " + config.GlobalConfigPath())
		}
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:        cfg.APIKey(),
			BaseURL:       cfg.Gateway.BaseURL,
			AnalysisModel: cfg.Gateway.AnalysisModel,
			EditModel:     cfg.Gateway.EditModel,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.gateway = gateway.NewSafe(client,
			gateway.WithBroker(a.hub.Gateway),
			gateway.WithModels(cfg.Gateway.AnalysisModel, cfg.Gateway.EditModel),
		)
	}

	return a, nil
}

// watch logs every published event while debug logging is on.
func (a *app) watch(ctx context.Context) {
	if !debug.IsEnabled() {
		return
	}

	conversations := a.hub.Conversation.Subscribe(ctx)
	calls := a.hub.Gateway.Subscribe(ctx)
	go func() {
		for {
			select {
			case ev, ok := <-conversations:
				if !ok {
					return
				}
				debug.L().Debug().
					Str("component", "conversation").
					Str("event", string(ev.Payload.Type)).
					Str("conversation_id", ev.Payload.ConversationID).
					Str("kind", ev.Payload.Kind).
					Int("entries", ev.Payload.Entries).
					Msg("conversation event")
			case ev, ok := <-calls:
				if !ok {
					return
				}
				debug.L().Debug().
					Str("component", "gateway").
					Str("event", string(ev.Payload.Type)).
					Str("operation", ev.Payload.Operation).
					Str("model", ev.Payload.Model).
					Dur("duration", ev.Payload.Duration).
					AnErr("error", ev.Payload.Error).
					Msg("gateway event")
			case <-a.hub.Done():
				return
			}
		}
	}()
}

func (a *app) sessionOptions() []session.Option {
	return []session.Option{session.WithBroker(a.hub.Conversation)}
}

// Close shuts down the hub and closes the store.
func (a *app) Close() {
	if debug.IsEnabled() {
		debug.Log("%s", a.hub.DebugString())
	}
	a.hub.Shutdown()
	if err := a.store.Close(); err != nil {
		debug.Error("cmd", err, "closing store")
	}
}
