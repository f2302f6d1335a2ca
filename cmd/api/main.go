package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/semprebellasuporte2025/semprebella-backend/api/routes"
	authsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/auth"
	cartsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/cart"
	"github.com/semprebellasuporte2025/semprebella-backend/internal/catalog"
	checkoutsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/checkout"
	contentsvc "github.com/semprebellasuporte2025/semprebella-backend/internal/content"
	couponssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/coupons"
	customerssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/customers"
	inventorysvc "github.com/semprebellasuporte2025/semprebella-backend/internal/inventory"
	orderssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/orders"
	supplierssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/suppliers"
	userssvc "github.com/semprebellasuporte2025/semprebella-backend/internal/users"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/auth/session"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/mercadopago"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/migrate"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/outbox"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/redis"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/storage/gcs"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/viacep"
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

	sessions, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	// Image uploads are optional; the catalog runs without them when no
	// bucket credentials are present.
	var images *gcs.Bucket
	if gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg); err != nil {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "gcs unavailable, image uploads disabled")
	} else {
		images = gcsClient.BucketHandle(gcsClient.DefaultBucket())
	}

	var payments *mercadopago.Client
	if cfg.MercadoPago.AccessToken != "" {
		payments, err = mercadopago.NewClient(cfg.MercadoPago, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create mercadopago client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "mercadopago token absent, checkout pro disabled")
	}

	cepClient, err := viacep.NewClient(cfg.ViaCEP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create viacep client", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	events := outbox.NewService(outbox.NewRepository(conn), logg)

	catalogService, err := catalog.NewService(catalog.NewRepository(conn), dbClient, images, logg)
	if err != nil {
		fatal(logg, "catalog service", err)
	}
	supplierService, err := supplierssvc.NewService(supplierssvc.NewRepository(conn))
	if err != nil {
		fatal(logg, "supplier service", err)
	}
	couponService, err := couponssvc.NewService(couponssvc.NewRepository(conn))
	if err != nil {
		fatal(logg, "coupon service", err)
	}
	contentService, err := contentsvc.NewService(contentsvc.NewRepository(conn), images)
	if err != nil {
		fatal(logg, "content service", err)
	}
	customerService, err := customerssvc.NewService(customerssvc.NewRepository(conn), cepClient)
	if err != nil {
		fatal(logg, "customer service", err)
	}
	inventoryService, err := inventorysvc.NewService(inventorysvc.NewRepository(conn), catalogService)
	if err != nil {
		fatal(logg, "inventory service", err)
	}
	cartService, err := cartsvc.NewService(cartsvc.NewRepository(conn), catalogService)
	if err != nil {
		fatal(logg, "cart service", err)
	}
	userService, err := userssvc.NewService(userssvc.NewRepository(conn), cfg.Password)
	if err != nil {
		fatal(logg, "user service", err)
	}

	authRepo := authsvc.NewRepository(conn)
	statusResolver, err := authsvc.NewStatusResolver(authRepo, redisClient, cfg.Session.AdminCacheTTL(), logg)
	if err != nil {
		fatal(logg, "status resolver", err)
	}
	authService, err := authsvc.NewService(authRepo, dbClient, customerService, userService, statusResolver, sessions, cfg.JWT, cfg.Password, logg)
	if err != nil {
		fatal(logg, "auth service", err)
	}

	orderService, err := orderssvc.NewService(orderssvc.NewRepository(conn), dbClient, inventoryService, events, logg)
	if err != nil {
		fatal(logg, "order service", err)
	}

	checkoutRepo, err := checkoutsvc.NewRepository(conn)
	if err != nil {
		fatal(logg, "checkout repository", err)
	}
	// A typed nil client must not reach the service as a non-nil
	// interface, or the payment step would call through a nil pointer.
	var preferences interface {
		CreatePreference(ctx context.Context, params mercadopago.PreferenceParams) (*mercadopago.Preference, error)
	}
	if payments != nil {
		preferences = payments
	}
	checkoutService, err := checkoutsvc.NewService(
		checkoutRepo,
		dbClient,
		customerService,
		cartService,
		couponService,
		inventoryService,
		events,
		preferences,
		cfg.Checkout,
		logg,
	)
	if err != nil {
		fatal(logg, "checkout service", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        dbClient,
		Redis:     redisClient,
		Sessions:  sessions,
		Registry:  registry,
		Auth:      authService,
		Catalog:   catalogService,
		Suppliers: supplierService,
		Coupons:   couponService,
		Content:   contentService,
		Customers: customerService,
		Cart:      cartService,
		Checkout:  checkoutService,
		Orders:    orderService,
		Inventory: inventoryService,
		Users:     userService,
		Payments:  payments,
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
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
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
}

func fatal(logg *logger.Logger, what string, err error) {
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
