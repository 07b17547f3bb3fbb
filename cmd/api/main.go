package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/vallyhouse/vally-backend/api/controllers"
	"github.com/vallyhouse/vally-backend/api/routes"
	"github.com/vallyhouse/vally-backend/internal/auth"
	"github.com/vallyhouse/vally-backend/internal/blogs"
	"github.com/vallyhouse/vally-backend/internal/cart"
	"github.com/vallyhouse/vally-backend/internal/catalog"
	"github.com/vallyhouse/vally-backend/internal/categories"
	"github.com/vallyhouse/vally-backend/internal/checkout"
	"github.com/vallyhouse/vally-backend/internal/contacts"
	"github.com/vallyhouse/vally-backend/internal/featured"
	"github.com/vallyhouse/vally-backend/internal/users"
	"github.com/vallyhouse/vally-backend/pkg/auth/session"
	"github.com/vallyhouse/vally-backend/pkg/config"
	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/logger"
	"github.com/vallyhouse/vally-backend/pkg/metrics"
	"github.com/vallyhouse/vally-backend/pkg/migrate"
	"github.com/vallyhouse/vally-backend/pkg/redis"
	"github.com/vallyhouse/vally-backend/pkg/storage/imagekit"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	imageClient, err := imagekit.NewClient(context.Background(), cfg.ImageKit, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap imagekit", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	exitOnError(logg, "failed to create register service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  users.NewRepository(dbClient.DB()),
		Sessions:  sessionManager,
		JWTConfig: cfg.JWT,
	})
	exitOnError(logg, "failed to create auth service", err)

	categoryRepo := categories.NewRepository(dbClient.DB())
	categoryService, err := categories.NewService(categories.ServiceParams{
		DB:   dbClient,
		Repo: categoryRepo,
	})
	exitOnError(logg, "failed to create category service", err)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		DB:         dbClient,
		Repo:       catalogRepo,
		Categories: categoryRepo,
		Images:     imageClient,
	})
	exitOnError(logg, "failed to create catalog service", err)

	featuredService, err := featured.NewService(featured.ServiceParams{
		DB:       dbClient,
		Repo:     featured.NewRepository(dbClient.DB()),
		Products: catalogRepo,
		Images:   imageClient,
	})
	exitOnError(logg, "failed to create featured service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		DB:       dbClient,
		Repo:     cart.NewRepository(dbClient.DB()),
		Products: catalogRepo,
		Images:   imageClient,
	})
	exitOnError(logg, "failed to create cart service", err)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:    cartService,
		WhatsApp: cfg.WhatsApp,
	})
	exitOnError(logg, "failed to create checkout service", err)

	blogService, err := blogs.NewService(blogs.ServiceParams{
		DB:     dbClient,
		Repo:   blogs.NewRepository(dbClient.DB()),
		Images: imageClient,
	})
	exitOnError(logg, "failed to create blog service", err)

	contactService, err := contacts.NewService(contacts.ServiceParams{
		Repo: contacts.NewRepository(dbClient.DB()),
	})
	exitOnError(logg, "failed to create contact service", err)

	router := routes.NewRouter(routes.RouterParams{
		Config:         cfg,
		Logger:         logg,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Sessions:       sessionManager,
		RateLimitStore: redisClient,
		HealthDeps: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"imagekit": imageClient,
		},
		Auth:       authService,
		Register:   registerService,
		Catalog:    catalogService,
		Featured:   featuredService,
		Categories: categoryService,
		Cart:       cartService,
		Checkout:   checkoutService,
		Blogs:      blogService,
		Contacts:   contactService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeResources(ctx, logg, dbClient, redisClient)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	closeResources(ctx, logg, dbClient, redisClient)
	logg.Info(ctx, "api server stopped")
}

func closeResources(ctx context.Context, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) {
	err := multierr.Combine(
		dbClient.Close(),
		redisClient.Close(),
	)
	if err != nil {
		logg.Error(ctx, "error releasing resources", err)
	}
}

func exitOnError(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
