// Package main runs the San Antonio MUD telnet server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sa-mud/samud/internal/broadcast"
	"github.com/sa-mud/samud/internal/config"
	"github.com/sa-mud/samud/internal/game/state"
	"github.com/sa-mud/samud/internal/game/tick"
	"github.com/sa-mud/samud/internal/game/world"
	"github.com/sa-mud/samud/internal/observability"
	"github.com/sa-mud/samud/internal/server"
	"github.com/sa-mud/samud/internal/session"
	"github.com/sa-mud/samud/internal/storage"
	"github.com/sa-mud/samud/internal/storage/postgres"
	"github.com/sa-mud/samud/internal/telnet"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty = defaults)")
	worldPath := flag.String("world", "", "path to world YAML file (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("loading config: %v", err)
		return err
	}
	if *worldPath != "" {
		cfg.World.Path = *worldPath
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Printf("initializing logger: %v", err)
		return err
	}
	defer logger.Sync()

	w, err := loadWorld(cfg.World)
	if err != nil {
		logger.Error("loading world", zap.Error(err))
		return err
	}
	logger.Info("world loaded",
		zap.String("start_room", w.StartRoom),
		zap.Int("rooms", len(w.Rooms)),
		zap.Int("npcs", len(w.NPCs)),
		zap.Int("items", len(w.Items)),
	)

	ctx := context.Background()

	store, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening storage", zap.Error(err))
		return err
	}

	// World model, router, sessions, tick scheduler.
	manager := state.NewManager(w)
	router := broadcast.NewRouter(manager, logger)
	sessions := session.NewHandler(manager, router, store, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, sessions, logger)
	scheduler := tick.NewScheduler(manager, router, logger,
		cfg.NPC.TickInterval, cfg.NPC.WanderChance, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))

	lifecycle := server.NewLifecycle(logger)

	if pool != nil {
		lifecycle.Add("postgres", healthService(ctx, pool, 30*time.Second, logger, pool.Close))
	}

	lifecycle.Add("tick", tickService(ctx, scheduler))

	lifecycle.Add("sessions", &server.FuncService{
		StartFn: func() error { return nil },
		StopFn:  sessions.DisconnectAll,
	})

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	printBanner(cfg.Telnet)

	logger.Info("samud initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	return nil
}

// loadWorld loads the configured world file, or the embedded default.
func loadWorld(cfg config.WorldConfig) (*world.World, error) {
	if cfg.Path == "" {
		return world.Default()
	}
	return world.LoadFromFile(cfg.Path)
}

// openStore builds the configured storage driver. The returned pool is nil
// for the memory driver.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, *postgres.Pool, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if cfg.Database.Migrate {
			if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
				return nil, nil, fmt.Errorf("migrating database: %w", err)
			}
			logger.Info("database schema up to date")
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
		)
		return postgres.NewStore(pool), pool, nil
	default:
		logger.Info("using in-memory storage; accounts reset on restart")
		return storage.NewMemoryStore(), nil, nil
	}
}

// healthChecker is the subset of postgres.Pool the health loop needs.
type healthChecker interface {
	Health(ctx context.Context, timeout time.Duration) error
}

// healthService pings the database on an interval, as a lifecycle service.
// Start blocks until Stop; Stop also runs onStop (the pool close).
func healthService(ctx context.Context, db healthChecker, interval time.Duration,
	logger *zap.Logger, onStop func()) *server.FuncService {
	stop := make(chan struct{})
	return &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return nil
				case <-ticker.C:
					if err := db.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() {
			close(stop)
			if onStop != nil {
				onStop()
			}
		},
	}
}

// tickService runs the NPC scheduler as a lifecycle service. Start blocks
// until Stop so the service honors the server.Service contract.
func tickService(ctx context.Context, s *tick.Scheduler) *server.FuncService {
	stop := make(chan struct{})
	return &server.FuncService{
		StartFn: func() error {
			s.Start(ctx)
			<-stop
			return nil
		},
		StopFn: func() {
			s.Stop()
			close(stop)
		},
	}
}

// printBanner writes connection instructions to stdout for whoever started
// the server in a terminal.
func printBanner(cfg config.TelnetConfig) {
	fmt.Printf("San Antonio MUD listening on %s\n", cfg.Addr())
	fmt.Printf("  connect locally:  telnet localhost %d\n", cfg.Port)
	fmt.Printf("                    nc localhost %d\n", cfg.Port)
	if ip := localIP(); ip != "" {
		fmt.Printf("  on your network:  telnet %s %d\n", ip, cfg.Port)
	}
}

// localIP returns a non-loopback IPv4 address for the banner, or "".
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() {
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return ""
}
