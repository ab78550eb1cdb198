package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/petasbytes/frontogether/internal/config"
	"github.com/petasbytes/frontogether/internal/cost"
	"github.com/petasbytes/frontogether/internal/prompt"
	"github.com/petasbytes/frontogether/internal/provider"
	"github.com/petasbytes/frontogether/internal/runner"
	"github.com/petasbytes/frontogether/internal/safety"
	"github.com/petasbytes/frontogether/internal/session"
	"github.com/petasbytes/frontogether/internal/telemetry"
	"github.com/petasbytes/frontogether/memory"
	"github.com/petasbytes/frontogether/tools"
)

func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	telemetry.Configure(telemetry.Settings{Enabled: cfg.Telemetry.Enabled, Dir: cfg.Telemetry.Dir})
	return cfg, nil
}

func (a *app) openSession(ctx context.Context, cfg config.Config) (*session.Session, error) {
	root, err := safety.ResolveRoot(cfg.Workdir)
	if err != nil {
		return nil, err
	}

	defs, err := tools.Registry(root, cfg.Tools...)
	if err != nil {
		return nil, err
	}
	dispatcher, err := tools.NewDispatcher(defs...)
	if err != nil {
		return nil, err
	}

	prices, err := cost.LoadTable(cfg.PricingFile)
	if err != nil {
		return nil, err
	}

	p, err := provider.New(provider.Options{
		Name:       cfg.Provider,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}

	r := runner.New(p, dispatcher, runner.Options{
		Model:              cfg.Model,
		MaxTokens:          cfg.MaxTokens,
		MaxDepth:           cfg.MaxDepth,
		TokenBudget:        cfg.TokenBudget,
		FeedbackToolErrors: cfg.FeedbackToolErrors(),
		Prices:             prices,
	})

	builder := prompt.NewWorkspace(root)
	builder.IncludeFiles = cfg.Prompt.IncludeFiles
	builder.MaxFileBytes = cfg.Prompt.MaxFileBytes
	builder.System = cfg.SystemPrompt
	if cfg.File != "" {
		builder.Exclude = append(builder.Exclude, cfg.File)
	}

	var store memory.Store
	switch cfg.Session.Store {
	case "json":
		store = memory.NewFileStore(cfg.Session.Path)
	case "sqlite":
		store, err = memory.OpenSQLite(ctx, cfg.Session.Path, cfg.Session.ID)
		if err != nil {
			return nil, err
		}
	}

	slog.Debug("session config", "provider", cfg.Provider, "model", cfg.Model, "workdir", root,
		"tools", cfg.Tools, "store", cfg.Session.Store, "budget", cfg.TokenBudget)
	return session.Open(ctx, session.Options{
		ID:     cfg.Session.ID,
		Runner: r,
		Prompt: builder,
		Store:  store,
	})
}
