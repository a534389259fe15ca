package main

import (
	"context"
	"log"

	"github.com/mintedhq/minted-go/auth"
	"github.com/mintedhq/minted-go/config"
	"github.com/mintedhq/minted-go/controllers"
	"github.com/mintedhq/minted-go/routes"
	"github.com/mintedhq/minted-go/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	provider := auth.NewTokenProvider(cfg.SessionToken)
	if err := provider.Load(); err != nil {
		log.Printf("Warning: could not load session token: %v", err)
	}

	api := services.NewAPIService(cfg.APIBaseURL, provider)
	snapshot := services.NewSnapshotStore(cfg.SnapshotPath)
	store := services.NewChatService(api, provider, snapshot)

	if err := store.Load(context.Background()); err != nil {
		log.Printf("Initial conversation load failed: %v", err)
	}

	chat := controllers.NewChatController(store, provider)
	router := routes.SetupRouter(chat, cfg.FrontendURL)

	log.Printf("Gateway starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Gateway failed to start: %v", err)
	}
}
