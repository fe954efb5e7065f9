// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"minishop/cache"
	"minishop/config"
	"minishop/controllers"
	"minishop/events"
	"minishop/logger"
	"minishop/metrics"
	"minishop/payment"
	"minishop/routes"
	"minishop/services"
	"minishop/store"
	"minishop/store/mongostore"
	"minishop/store/sqlstore"
	"minishop/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load environment variables from .env file
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Service: "minishop",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	var productCache *cache.ProductCache
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		productCache = cache.NewProductCache(rdb, cfg.ProductCacheTTL, log)
	}

	publisher, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	sender, err := utils.NewSender(cfg.MailProvider, cfg.PostmarkAPIToken, cfg.SendgridAPIKey, cfg.EmailSender, log)
	if err != nil {
		return err
	}
	mailer := utils.NewEmailService(sender, cfg.VerificationURL, cfg.Currency, log)

	if cfg.StripeAPIKey == "" {
		log.Warn("STRIPE_API_KEY is not set, checkout will fail")
	}
	gateway := payment.NewStripeGateway(cfg.StripeAPIKey, nil)
	m := metrics.New("minishop")
	tokens := utils.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	seed, err := services.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		return err
	}
	if cfg.AdminEmail != "" {
		seed.Admin = services.AdminSeed{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
	}
	if err := services.NewSeeder(st, 0, log).Run(ctx, seed); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	products := services.NewProductService(st, productCache, log)
	auth := services.NewAuthService(st, tokens, mailer, services.AuthConfig{VerificationTTL: cfg.VerificationTokenTTL}, log)
	orders := services.NewOrderService(st, gateway, products, publisher, mailer, m, services.OrderConfig{
		AppURL:                 cfg.AppURL,
		Currency:               cfg.Currency,
		ExpireOrphanedSessions: cfg.CheckoutExpireOrphanedSessions,
	}, log)

	// Initialize controllers
	c := routes.Controllers{
		Auth:     controllers.NewAuthController(auth, log),
		User:     controllers.NewUserController(services.NewUserService(st, 0, log), log),
		Role:     controllers.NewRoleController(services.NewRoleService(st, log), log),
		Category: controllers.NewCategoryController(services.NewCategoryService(st, log), log),
		Product:  controllers.NewProductController(products, log),
		Cart:     controllers.NewCartController(services.NewCartService(st, products, log), log),
		Order:    controllers.NewOrderController(orders, log),
		Health:   controllers.NewHealthController(st, log),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(c, auth, m, log, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server is running", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == "mongo" {
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
	return sqlstore.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL)
}

func openPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	case "rabbitmq":
		return events.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	case "none", "":
		return events.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.EventsDriver)
	}
}
