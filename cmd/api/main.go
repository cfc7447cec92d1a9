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

	"github.com/oakmart/storefront-backend/api/routes"
	"github.com/oakmart/storefront-backend/internal/address"
	"github.com/oakmart/storefront-backend/internal/auth"
	"github.com/oakmart/storefront-backend/internal/cart"
	"github.com/oakmart/storefront-backend/internal/categories"
	"github.com/oakmart/storefront-backend/internal/orders"
	product "github.com/oakmart/storefront-backend/internal/products"
	"github.com/oakmart/storefront-backend/internal/reviews"
	"github.com/oakmart/storefront-backend/internal/users"
	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/logger"
	"github.com/oakmart/storefront-backend/pkg/migrate"
	"github.com/oakmart/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	productRepo := product.NewRepository(gormDB)
	categoryRepo := categories.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	reviewRepo := reviews.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		Users:    userRepo,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	exitOn(logg, "auth service", err)

	addressService, err := address.NewService(userRepo)
	exitOn(logg, "address service", err)

	categoryService, err := categories.NewService(categories.ServiceParams{
		Categories: categoryRepo,
		Products:   productRepo,
		DB:         dbClient,
	})
	exitOn(logg, "category service", err)

	productService, err := product.NewService(product.ServiceParams{
		Products:   productRepo,
		Categories: categoryRepo,
	})
	exitOn(logg, "product service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Carts:    cartRepo,
		Products: productRepo,
		Config:   cfg.Cart,
	})
	exitOn(logg, "cart service", err)

	orderService, err := orders.NewService(orders.ServiceParams{
		Orders:    orderRepo,
		Carts:     cartRepo,
		Inventory: productRepo,
		DB:        dbClient,
		TxStores:  orders.NewRepositoryTxStores(orderRepo, productRepo, cartRepo),
	})
	exitOn(logg, "order service", err)

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Reviews:   reviewRepo,
		Products:  productRepo,
		Purchases: orderRepo,
	})
	exitOn(logg, "review service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	router := routes.NewRouter(routes.Deps{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Redis:      redisClient,
		Auth:       authService,
		Addresses:  addressService,
		Products:   productService,
		Categories: categoryService,
		Cart:       cartService,
		Orders:     orderService,
		Reviews:    reviewService,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(logCtx, "api server stopped")
}

func exitOn(logg *logger.Logger, what string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+what, err)
		os.Exit(1)
	}
}
