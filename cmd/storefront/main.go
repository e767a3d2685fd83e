package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/gateway"
	"github.com/example/storefront/pkg/actors"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/discovery"
	"github.com/example/storefront/pkg/events"
	storefrontgrpc "github.com/example/storefront/pkg/grpc"
	"github.com/example/storefront/pkg/logging"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(start(os.Args[1:]))
}

// start runs the storefront until a signal arrives and returns the exit code.
// Deferred cleanup and the final log flush happen before it returns.
func start(args []string) int {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	configPath := fs.String("config", "config/config.yaml", "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("Starting storefront",
		zap.String("name", cfg.Server.Name),
		zap.String("http", cfg.Server.HTTPAddr()),
		zap.String("grpc", cfg.Server.GRPCAddr()),
		zap.String("database", cfg.Database.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Storefront stopped with error", zap.Error(err))
		return 1
	}
	logger.Info("Storefront stopped")
	return 0
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.Database.Driver == "memory" {
		return repository.NewMemoryStore(), nil
	}
	db, err := repository.OpenGorm(cfg)
	if err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if cfg.Database.Seed {
		if err := repository.Seed(ctx, store); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	checks := map[string]gateway.Pinger{"store": store}

	var cache repository.Cache = repository.NopCache{}
	if cfg.Redis.Addr != "" {
		redisRepo := repository.NewRedisRepository(&cfg.Redis)
		if err := redisRepo.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed", zap.Error(err))
		} else {
			logger.Info("Redis connected successfully")
		}
		defer redisRepo.Close()
		cache = redisRepo
		checks["redis"] = redisRepo
	}

	var audit repository.AuditLogger = repository.NewMemoryAudit()
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoRepo.Close(closeCtx)
		}()
		audit = mongoRepo
		checks["mongodb"] = mongoRepo
	}

	publisher, err := events.NewPublisher(cfg.Events, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	notifier, err := actors.NewNotifier(logger, audit, publisher)
	if err != nil {
		return err
	}
	defer notifier.Stop(cfg.Server.ShutdownTimeout)

	payments, err := payment.New(cfg.Stripe)
	if err != nil {
		return fmt.Errorf("failed to set up payments: %w", err)
	}

	users := service.NewUsers(store, auth.NewPasswordHasher(cfg.Auth.BcryptCost), logger)
	if err := users.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	sessions := auth.NewSessionManager(cfg.Auth)
	catalog := service.NewCatalog(store, cache, notifier, logger)
	gw := gateway.NewGateway(cfg, logger, gateway.Services{
		Catalog:  catalog,
		Carts:    service.NewCarts(store, logger),
		Orders:   service.NewOrders(store, cache, audit, notifier, logger),
		Users:    users,
		Sessions: sessions,
		Payments: payments,
		Checks:   checks,
	})
	inventory := storefrontgrpc.NewInventoryServer(catalog, sessions, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if len(cfg.Etcd.Endpoints) > 0 {
		sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, logger)
		if err != nil {
			return err
		}
		defer sd.Close()

		instance := &discovery.ServiceInstance{Name: storefrontgrpc.DiscoveryName, Addr: advertiseAddr(cfg, lis)}
		if err := sd.Register(ctx, instance); err != nil {
			return err
		}
		defer func() {
			deregCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sd.Deregister(deregCtx, instance); err != nil {
				logger.Warn("Failed to deregister service", zap.Error(err))
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(gw.Start)
	g.Go(func() error {
		return inventory.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		inventory.Stop()
		return gw.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// advertiseAddr replaces a wildcard listen host with the machine's hostname.
func advertiseAddr(cfg *config.Config, lis net.Listener) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		if h, err := os.Hostname(); err == nil {
			host = h
		}
	}
	_, port, err := net.SplitHostPort(lis.Addr().String())
	if err != nil {
		return lis.Addr().String()
	}
	return net.JoinHostPort(host, port)
}
