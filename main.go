package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/appetiteclub/storefront/internal/cart"
	"github.com/appetiteclub/storefront/internal/catalog"
	"github.com/appetiteclub/storefront/internal/mongo"
	"github.com/appetiteclub/storefront/internal/order"
	"github.com/appetiteclub/storefront/pkg"
)

const (
	appNamespace = "STOREFRONT"
	appName      = "storefront"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	menuItemRepo := mongo.NewMenuItemRepo(db)
	orderRepo := mongo.NewOrderRepo(db)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	// Live order tracking: the tracker fans snapshots out per order; the
	// status subscriber feeds it from the event bus.
	tracker := order.NewTracker(orderRepo, logger)
	statusSub := order.NewOrderStatusSubscriber(sub, tracker, logger)

	carts := cart.NewCartStateCache(logger)
	checkoutSvc := cart.NewCheckoutService(orderRepo, pub, logger)

	catalogHandler := catalog.NewHandler(menuItemRepo, config, logger)
	cartHandler := cart.NewHandler(cart.HandlerDeps{
		Carts:        carts,
		MenuItemRepo: menuItemRepo,
		Checkout:     checkoutSvc,
	}, config, logger)
	orderHandler := order.NewHandler(order.HandlerDeps{
		OrderRepo: orderRepo,
		Tracker:   tracker,
		Publisher: pub,
	}, config, logger)

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	// Setup catalog seeding if enabled
	seedEnabled, _ := config.GetString("seeding.demo")
	var seedHooks apt.LifecycleHooks
	if seedEnabled == "true" {
		logger.Info("Catalog seeding enabled for storefront")
		seedHooks = apt.LifecycleHooks{
			OnStart: catalog.SeedingFunc(appName, baseRepo.GetDatabase, logger),
		}
	}

	// Public-facing storefront: CORS stays enabled for browser clients.
	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
		statusSub,
		publisherLifecycle,
		subLifecycle,
	}
	if seedEnabled == "true" {
		lifecycles = append(lifecycles, seedHooks)
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", catalogHandler, cartHandler, orderHandler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
