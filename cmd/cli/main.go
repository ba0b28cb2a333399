package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/webfolio/webfolio/internal/buildinfo"
	"github.com/webfolio/webfolio/internal/client/api"
	"github.com/webfolio/webfolio/internal/client/cli"
	"github.com/webfolio/webfolio/internal/client/config"
	"github.com/webfolio/webfolio/internal/client/services"
	"github.com/webfolio/webfolio/internal/client/session"
	"github.com/webfolio/webfolio/internal/client/store"
	"github.com/webfolio/webfolio/internal/logging"

	_ "modernc.org/sqlite"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	st, err := store.OpenSQLite(ctx, cfg.StorePath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer st.Close()

	apiClient := api.New(cfg.APIBaseURL, st, logger,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithStoreTTL(cfg.StoreTTL),
	)

	authService := services.NewAuthService(apiClient, st, logger)
	profileService := services.NewProfileService(apiClient, st, cfg.DefaultPublicUsername)

	ui := cli.TermUI{}
	ctrl := session.New(authService, st, ui, ui, logger,
		session.WithRefreshInterval(cfg.TokenRefreshInterval),
		session.WithPollInterval(cfg.SessionPollInterval),
	)

	app := cli.NewApp(cfg, ctrl, profileService)
	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
