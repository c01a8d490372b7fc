package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cine-storefront/internal/analytics"
	analytics_api "cine-storefront/internal/analytics/api"
	"cine-storefront/internal/auth"
	"cine-storefront/internal/auth/auth_api"
	"cine-storefront/internal/catalog"
	"cine-storefront/internal/config"
	"cine-storefront/internal/database"
	"cine-storefront/internal/database/migrations"
	"cine-storefront/internal/inventory"
	"cine-storefront/internal/kafka"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/metrics"
	"cine-storefront/internal/order"
	"cine-storefront/internal/order/db"
	"cine-storefront/internal/order/order_api"
	"cine-storefront/internal/receipts"
	"cine-storefront/internal/sellers"
	"cine-storefront/internal/sellers/sellers_api"
	"cine-storefront/internal/sse"
	"cine-storefront/internal/storefront"
	"cine-storefront/internal/storefront/storefront_api"
	qr "cine-storefront/internal/tickets/qr_generator"
	tickets "cine-storefront/internal/tickets/service"
	"cine-storefront/internal/tickets/ticket_api"
	"cine-storefront/internal/utils"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.Log.Dir, cfg.Log.Prefix)
	defer log.Close()

	log.Info("APP", "Starting Cine Storefront initialization")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connections ---
	bunDB, sqlDB, err := database.OpenPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(sqlDB, migrations.DefaultOptions(), log)
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("MIGRATION", fmt.Sprintf("Failed to run migrations: %v", err))
		}
	}

	redisClient, err := database.OpenRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer redisClient.Close()

	m := metrics.Registry("storefront")

	var publisher kafka.Publisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled {
		log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, cfg.Kafka.Topics.All(), log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
		publisher = kafka.NewBreakerPublisher(kafka.NewProducer(cfg.Kafka.Brokers), log)
		log.Info("KAFKA", "Kafka producer initialized successfully")
	} else {
		log.Warn("KAFKA", "Kafka disabled, order events are not published")
	}
	defer publisher.Close()
	events := kafka.NewEvents(publisher, cfg.Kafka.Topics, log, m)

	// --- Domain services ---
	cat, err := catalog.Load(cfg.Storefront.CatalogFile)
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	log.Info("APP", fmt.Sprintf("Catalog loaded with %d product(s)", len(cat.Products())))

	receiptStore, err := receipts.New(ctx, cfg.Storage, cfg.Server.PublicBaseURL)
	if err != nil {
		log.Fatal("STORAGE", fmt.Sprintf("Failed to initialize receipt storage: %v", err))
	}

	emitter := sse.NewInventoryEmitter()
	broadcaster := inventory.NewRedisBroadcaster(redisClient, cfg.Redis.SettingsChannel, log)
	if err := broadcaster.Subscribe(ctx, emitter.Emit); err != nil {
		log.Fatal("REDIS", err.Error())
	}

	inventoryService := inventory.NewService(&inventory.DB{Bun: bunDB}, broadcaster, log, m, cfg.Storefront.TicketsTotal, cfg.Storefront.PixKey)
	if snap, err := inventoryService.Snapshot(ctx); err == nil {
		m.SetTicketsSold(snap.Sold)
	}

	sellerService := sellers.NewService(&sellers.DB{Bun: bunDB}, log)
	orderStore := &db.DB{Bun: bunDB}
	orderService := order.NewOrderService(
		orderStore,
		receiptStore,
		inventoryService,
		sellerService,
		events,
		cat,
		log,
		m,
		cfg.Storefront.RequireSeller,
	)

	qrGenerator := qr.NewGenerator(cfg.Storefront.QRPrefix, qr.DefaultSize)
	ticketService := tickets.NewTicketService(orderStore, qrGenerator, events, log, m)
	analyticsService := analytics.NewService(analytics.NewDB(bunDB))
	storefrontService := storefront.NewService(cat, sellerService, inventoryService, cfg.Storefront.RequireSeller)

	authService, err := auth.NewService(cfg.Admin.Password, cfg.Admin.JWTSecret, cfg.Admin.SessionTTL, auth.NewRedisSessionStore(redisClient), log)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, []string{cfg.Kafka.Topics.OrderCreated, cfg.Kafka.Topics.OrderCancelled}, cfg.Kafka.GroupID, log)
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx, sellerService.HandleOrderEvent); err != nil {
				log.Error("KAFKA", fmt.Sprintf("Seller sync consumer stopped: %v", err))
			}
		}()
	}

	// --- Handlers ---
	orderHandler := order_api.NewHandler(orderService, log, cfg.Server.MaxUploadBytes, cfg.Server.PublicBaseURL)
	ticketHandler := ticket_api.NewHandler(orderService, ticketService, qrGenerator, log, cfg.Server.PublicBaseURL)
	storefrontHandler := storefront_api.NewHandler(storefrontService, emitter, qrGenerator, log)
	sellersHandler := sellers_api.NewHandler(sellerService, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)
	authHandler := auth_api.NewHandler(authService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(logger.RequestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, "ok", nil)
	})
	r.Handle("/metrics", m.Handler())

	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		r.Handle("/receipts/*", http.StripPrefix("/receipts/", http.FileServer(http.Dir(cfg.Storage.LocalDir))))
		log.Info("ROUTER", fmt.Sprintf("Serving local receipts from %s", cfg.Storage.LocalDir))
	}

	// --- Public Routes ---
	storefrontHandler.RegisterRoutes(r)
	r.Post("/api/checkout", orderHandler.Checkout)
	r.Get("/api/tickets/{orderId}", ticketHandler.GetTicket)
	r.Get("/api/tickets/{orderId}/qr.png", ticketHandler.TicketQR)
	log.Info("ROUTER", "Public storefront, checkout and ticket routes registered")

	// --- Admin Routes ---
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authService.Middleware())

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Get("/{orderId}", orderHandler.GetOrder)
				r.Post("/{orderId}/cancel", orderHandler.CancelOrder)
				r.Get("/{orderId}/receipt", orderHandler.Receipt)
			})

			r.Get("/checkin/{code}", ticketHandler.LookupTicket)
			r.Post("/checkin", ticketHandler.CheckinTicket)

			analyticsHandler.RegisterRoutes(r)
			sellersHandler.RegisterRoutes(r)
			r.Put("/settings", storefrontHandler.UpdateSettings)
		})
	})
	log.Info("ROUTER", "Admin routes registered under /api/admin")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Cine Storefront running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Cine Storefront shutdown complete")
	}
}

