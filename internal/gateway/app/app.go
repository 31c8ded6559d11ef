package app

import (
	"context"
	"fmt"
	"log"

	"changelogd/internal/gateway/config"
	"changelogd/internal/gateway/handler"
	"changelogd/internal/gateway/server"
	"changelogd/internal/gateway/service/generation"
	"changelogd/internal/github"
	"changelogd/internal/llm"
)

type App struct {
	server *server.Server
	model  llm.Client
	stores *gatewayStores
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}

	source, err := github.NewClient(cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Token)
	if err != nil {
		return nil, err
	}

	model, err := initLLM(cfg)
	if err != nil {
		return nil, err
	}

	jobSvc := generation.New(source, model, stores.changelog, stores.artifact,
		generation.WithRetention(cfg.JobRetention))

	commitsHandler := handler.NewCommitsHandler(source)
	changelogsHandler := handler.NewChangelogsHandler(stores.changelog, jobSvc)
	watchHandler := handler.NewWatchHandler(jobSvc)

	mux := server.NewMux(commitsHandler, changelogsHandler, watchHandler, cfg.CORSOrigins)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		model:  model,
		stores: stores,
	}, nil
}

func initLLM(cfg *config.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		log.Printf("GEMINI_API_KEY not set; using fake LLM client")
		return llm.NewFakeClient(), nil
	}
	return llm.NewGeminiClient(context.Background(), cfg.LLM.Model)
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	_ = a.model.Close()
	_ = a.stores.changelog.Close()
	return err
}
