package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/RL8/mb-final/internal/config"
	"github.com/RL8/mb-final/internal/hub"
	"github.com/RL8/mb-final/internal/logging"
	"github.com/RL8/mb-final/internal/policy"
	"github.com/RL8/mb-final/internal/repository"
	"github.com/RL8/mb-final/internal/service"
	"github.com/RL8/mb-final/internal/session"
	internalhttp "github.com/RL8/mb-final/internal/transport/http"
	"github.com/RL8/mb-final/internal/transport/rpc"
	"github.com/RL8/mb-final/internal/ws"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	log.Info().
		Int("ws_port", cfg.WSPort).
		Int("http_port", cfg.HTTPPort).
		Int("rpc_port", cfg.RPCPort).
		Bool("journal", cfg.DatabaseURL != "").
		Msg("starting mindbridge state service")

	// Change journal
	var journal repository.Journal
	if cfg.DatabaseURL != "" {
		store, err := repository.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open journal")
		}
		defer store.Close()
		journal = store
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize ui component policy")
	}

	registry := session.NewRegistry()
	svc := service.New(registry, journal, policyEngine)

	connectionHub := hub.NewHub()
	go connectionHub.Run(ctx)

	wsServer := ws.NewServer(cfg, connectionHub, svc)

	wsEcho := echo.New()
	wsEcho.HideBanner = true
	wsEcho.HidePort = true
	wsEcho.Use(middleware.Logger())
	wsEcho.Use(middleware.Recover())
	wsEcho.GET("/ws", wsServer.HandleWebSocket)

	httpServer := internalhttp.NewServer(svc, connectionHub)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.WSPort)
		if err := wsEcho.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start websocket server")
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start http server")
		}
	}()

	var rpcServer *rpc.Server
	if cfg.RPCPort > 0 {
		rpcServer, err = rpc.NewServer(svc)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize rpc server")
		}
		go func() {
			addr := fmt.Sprintf(":%d", cfg.RPCPort)
			if err := rpcServer.Start(addr); err != nil {
				log.Fatal().Err(err).Msg("failed to start rpc server")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := wsEcho.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown websocket server gracefully")
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown http server gracefully")
	}
	if rpcServer != nil {
		if err := rpcServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown rpc server gracefully")
		}
	}
	cancel()

	log.Info().Msg("stopped")
}
