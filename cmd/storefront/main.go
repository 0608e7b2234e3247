package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/broadcast"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/content"
	"github.com/fjod/go_storefront/internal/events"
	storegrpc "github.com/fjod/go_storefront/internal/grpc"
	storehttp "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/kv"
	"github.com/fjod/go_storefront/internal/orders"
	"github.com/fjod/go_storefront/internal/profile"
	"github.com/fjod/go_storefront/internal/wishlist"
	"github.com/fjod/go_storefront/pkg/config"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/fjod/go_storefront/pkg/telemetry"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

// app collects what main has to close on the way out.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	closers []func() error
	checks  map[string]storegrpc.Check

	redis *redis.Client
	cms   *content.Client
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Service: cfg.Telemetry.ServiceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		Env:         cfg.AppEnv,
		Exporter:    cfg.Telemetry.Exporter,
		Endpoint:    cfg.Telemetry.Endpoint,
	})
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, log: log, checks: map[string]storegrpc.Check{}}
	defer a.close()

	sessions, err := a.sessionStore(ctx)
	if err != nil {
		return err
	}
	bus, err := a.broadcaster(ctx)
	if err != nil {
		return err
	}
	fetcher, err := a.catalogFetcher()
	if err != nil {
		return err
	}
	repo, err := a.orderRepository()
	if err != nil {
		return err
	}

	catalogSvc := catalog.NewService(fetcher, log)
	cartStore := cart.NewStore(sessions, bus, log)
	wishlistStore := wishlist.NewStore(sessions, bus, log)
	profileSvc := profile.NewService(sessions, repo, wishlistStore, log)

	var publisher events.Publisher = cart.NewClearer(cartStore)
	var poller *cart.Poller
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.OrderTopic, cfg.Kafka.Brokers...)
		a.onClose(kp.Close)
		publisher = kp

		poller = cart.NewPoller(cartStore, log, cfg.Kafka.OrderTopic, cfg.Kafka.GroupID, cfg.Kafka.Brokers...)
		a.onClose(poller.Close)
		log.Info("order events enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.OrderTopic)
	}
	checkoutSvc := checkout.NewService(repo, publisher, log)

	timeout := cfg.RequestTimeout
	router := storehttp.NewRouter(storehttp.Handlers{
		Products: storehttp.NewProductHandler(catalogSvc, timeout, log),
		Cart:     storehttp.NewCartHandler(cartStore, catalogSvc, timeout, log),
		Wishlist: storehttp.NewWishlistHandler(wishlistStore, catalogSvc, timeout, log),
		Checkout: storehttp.NewCheckoutHandler(checkoutSvc, cartStore, timeout, log),
		Profile:  storehttp.NewProfileHandler(profileSvc, timeout, log),
		Events:   storehttp.NewEventsHandler(bus, nil, log),
	}, storehttp.RouterOptions{
		RequestTimeout:     timeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		ServiceName:        cfg.Telemetry.ServiceName,
	}, log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}
	opsServer := storegrpc.NewServer(a.checks, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc server listening", "port", cfg.GRPCPort)
		return opsServer.Serve(gctx, lis)
	})

	if poller != nil {
		g.Go(func() error {
			return poller.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down storefront...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		opsServer.Stop(shutdownCtx)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown failed", "error", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("tracer shutdown failed", "error", err)
		}
		return nil
	})

	err = g.Wait()
	log.Info("storefront stopped")
	return err
}

func (a *app) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	a.log.Info("redis ping succeeded", "addr", a.cfg.Redis.Addr)

	a.redis = client
	a.onClose(client.Close)
	a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return client, nil
}

func (a *app) contentClient() *content.Client {
	if a.cms == nil {
		a.cms = content.NewClient(content.Options{
			ProjectID:  a.cfg.CMS.ProjectID,
			Dataset:    a.cfg.CMS.Dataset,
			APIVersion: a.cfg.CMS.APIVersion,
			Token:      a.cfg.CMS.Token,
			BaseURL:    a.cfg.CMS.BaseURL,
			Timeout:    a.cfg.RequestTimeout,
		}, a.log)
		a.checks["content"] = a.cms.Healthy
	}
	return a.cms
}

func (a *app) sessionStore(ctx context.Context) (kv.Store, error) {
	switch a.cfg.SessionBackend {
	case "redis":
		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return kv.NewRedisStore(client), nil

	case "mongo":
		db, err := kv.ConnectMongo(ctx, a.cfg.Mongo)
		if err != nil {
			return nil, err
		}
		a.onClose(func() error { return db.Client().Disconnect(context.Background()) })
		a.checks["mongo"] = func(ctx context.Context) error { return db.Client().Ping(ctx, nil) }
		a.log.Info("connected to mongodb", "uri", a.cfg.Mongo.URI)

		primary := kv.NewMongoStore(db)
		if err := primary.CreateIndexes(ctx); err != nil {
			return nil, err
		}

		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return kv.NewCached(primary, kv.NewRedisCache(client, a.cfg.Redis.CacheTTL), a.log), nil

	default:
		return kv.NewMemoryStore(), nil
	}
}

func (a *app) broadcaster(ctx context.Context) (broadcast.Broadcaster, error) {
	if a.cfg.BroadcastBackend != "redis" {
		return broadcast.NewHub(), nil
	}
	client, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	return broadcast.NewRedisBroadcaster(client, a.log), nil
}

func (a *app) catalogFetcher() (catalog.Fetcher, error) {
	if a.cfg.CatalogBackend == "cms" {
		return catalog.NewCMSFetcher(a.contentClient()), nil
	}

	f, err := catalog.NewSQLiteFetcher(a.cfg.SQLite.Path)
	if err != nil {
		return nil, err
	}
	a.onClose(f.Close)
	if err := f.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run catalog migrations: %w", err)
	}
	a.checks["sqlite"] = f.Ping
	a.log.Info("catalog database ready", "path", a.cfg.SQLite.Path)
	return f, nil
}

func (a *app) orderRepository() (orders.Repository, error) {
	switch a.cfg.OrderBackend {
	case "cms":
		return orders.NewCMSRepository(a.contentClient()), nil

	case "postgres":
		pg := a.cfg.Postgres
		repo, err := orders.NewPostgresRepository(orders.Credentials{
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
			DBName:   pg.DBName,
		})
		if err != nil {
			return nil, err
		}
		a.onClose(repo.Close)
		if err := repo.RunMigrations(); err != nil {
			return nil, fmt.Errorf("failed to run order migrations: %w", err)
		}
		a.checks["postgres"] = repo.Ping
		a.log.Info("connected to postgres", "host", pg.Host, "db", pg.DBName)
		return repo, nil

	default:
		return orders.NewMemoryRepository(), nil
	}
}
