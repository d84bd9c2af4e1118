package main

import (
	"net/rpc"
	"os"
	"os/signal"
	"syscall"

	"github.com/wfunc/tetris/config"
	"github.com/wfunc/tetris/logger"
	"github.com/wfunc/tetris/monitor"
	"github.com/wfunc/tetris/persistence"
	gameserver_rpc "github.com/wfunc/tetris/rpc"
	"github.com/wfunc/tetris/server"
	"github.com/wfunc/tetris/services"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Optional score persistence
	var scores *services.ScoreService
	if cfg.Database.Enabled {
		store, err := openStore(cfg)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
		logger.Log.Info("Database connection successful.")
		scores = services.NewScoreService(store)
	}

	// Metrics
	mon := monitor.NewMonitor("tetris")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Relay server with spectator feed
	gameServer := server.NewGameServer(cfg.Server.ListenAddress, scores, mon)
	hub := server.NewSpectatorHub()
	hub.Start(cfg.Server.SpectatorAddress)
	gameServer.SetSpectatorHub(hub)

	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}

	// Admin RPC
	rpcServer, err := gameserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	rpc.Register(gameserver_rpc.NewStatsService(gameServer.Sessions(), scores))
	go rpcServer.Start()

	logger.Log.Infof("Game server running on %s", cfg.Server.ListenAddress)

	// Block until interrupted, then stop everything.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")
	rpcServer.Stop()
	hub.Close()
	gameServer.Stop()
}

func openStore(cfg *config.Config) (persistence.Store, error) {
	pg := cfg.Database.Postgres
	if cfg.Database.Driver == "pq" {
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
}
