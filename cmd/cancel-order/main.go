package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/semprebellasuporte2025/semprebella-backend/internal/catalog"
	"github.com/semprebellasuporte2025/semprebella-backend/internal/inventory"
	"github.com/semprebellasuporte2025/semprebella-backend/internal/orders"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/outbox"
)

// Operational escape hatch for support: cancels an order outside the
// admin API, restocking its items and emitting the cancellation event.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "cancel-order"})

	_ = godotenv.Load()

	orderFlag := flag.String("order", "", "order UUID to cancel")
	actorFlag := flag.String("actor", "", "admin user UUID performing the cancellation (optional)")
	flag.Parse()

	if *orderFlag == "" {
		fmt.Fprintln(os.Stderr, "missing -order")
		os.Exit(1)
	}
	orderID, err := uuid.Parse(*orderFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -order: %v\n", err)
		os.Exit(1)
	}
	var actorID *uuid.UUID
	if *actorFlag != "" {
		parsed, err := uuid.Parse(*actorFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -actor: %v\n", err)
			os.Exit(1)
		}
		actorID = &parsed
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "cancel-order",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	conn := dbClient.DB()
	events := outbox.NewService(outbox.NewRepository(conn), logg)

	catalogService, err := catalog.NewService(catalog.NewRepository(conn), dbClient, nil, logg)
	requireResource(ctx, logg, "catalog service", err)
	inventoryService, err := inventory.NewService(inventory.NewRepository(conn), catalogService)
	requireResource(ctx, logg, "inventory service", err)
	orderService, err := orders.NewService(orders.NewRepository(conn), dbClient, inventoryService, events, logg)
	requireResource(ctx, logg, "order service", err)

	order, err := orderService.Cancel(ctx, orderID, actorID)
	if err != nil {
		logg.Error(ctx, "cancellation failed", err)
		os.Exit(1)
	}

	fmt.Printf("order %s (%s) canceled\n", order.OrderNumber, order.ID)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
