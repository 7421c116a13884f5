package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lokalyAPI/handlers"
	"lokalyAPI/internal/notification"
	"lokalyAPI/middleware"
	"lokalyAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	localService        *services.LocalService
	staffService        *services.StaffService
	tokenService        *services.TokenService
	customerService     *services.CustomerService
	tierService         *services.TierService
	benefitService      *services.BenefitService
	ratingService       *services.RatingService
	notificationService *services.NotificationService
	redemptionService   *services.RedemptionService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	localService = services.NewLocalService(dbPool)
	staffService = services.NewStaffService(dbPool)
	tokenService = services.NewTokenService(dbPool)
	customerService = services.NewCustomerService(dbPool)
	tierService = services.NewTierService(dbPool)
	benefitService = services.NewBenefitService(dbPool)
	ratingService = services.NewRatingService(dbPool)
	notificationService = services.NewNotificationService(dbPool)
	redemptionService = services.NewRedemptionService(dbPool, notificationService)

	// A broken tier table would make every redemption fail its tier
	// lookup, so refuse to start quietly.
	if err := tierService.CheckIntegrity(ctx); err != nil {
		log.Fatal("Tier table check failed: ", err)
	}

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	localHandler := handlers.NewLocalHandler(localService)
	staffHandler := handlers.NewStaffHandler(tokenService, staffService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	redemptionHandler := handlers.NewRedemptionHandler(redemptionService)
	benefitHandler := handlers.NewBenefitHandler(benefitService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(localService, tierService, staffService, benefitService)
	webhookHandler := handlers.NewWebhookHandler(customerService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "lokaly-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/locals", localHandler.ListLocals).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/customer", customerHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/customer", customerHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/customer/visits", customerHandler.GetVisitHistory).Methods("GET")
	protected.HandleFunc("/customer/benefits", benefitHandler.ListBenefits).Methods("GET")

	protected.HandleFunc("/redeem", redemptionHandler.Redeem).Methods("POST")
	protected.HandleFunc("/visits/{visitID}/rating", ratingHandler.AddRating).Methods("POST")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	protected.HandleFunc("/staff/local", staffHandler.GetLocal).Methods("GET")
	protected.HandleFunc("/staff/qr", staffHandler.IssueToken).Methods("POST")

	protected.HandleFunc("/admin/locals", adminHandler.CreateLocal).Methods("POST")
	protected.HandleFunc("/admin/locals/{slug}", adminHandler.UpdateLocal).Methods("PUT")
	protected.HandleFunc("/admin/tiers", adminHandler.ListTiers).Methods("GET")
	protected.HandleFunc("/admin/tiers", adminHandler.ReplaceTiers).Methods("PUT")
	protected.HandleFunc("/admin/staff", adminHandler.CreateStaff).Methods("POST")
	protected.HandleFunc("/admin/staff/{staffID}", adminHandler.DeactivateStaff).Methods("DELETE")
	protected.HandleFunc("/admin/benefits", adminHandler.CreateBenefit).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
