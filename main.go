package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vayungodara/lockin-sub000/handlers"
	"github.com/vayungodara/lockin-sub000/internal/notification"
	"github.com/vayungodara/lockin-sub000/middleware"
	"github.com/vayungodara/lockin-sub000/services"
)

var (
	dbPool              *pgxpool.Pool
	eventService        *services.EventService
	streakService       *services.StreakService
	statsService        *services.StatsService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

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

	notificationService = services.NewNotificationService(dbPool)
	eventService = services.NewEventService(dbPool)
	streakService = services.NewStreakService(dbPool, eventService, notificationService)
	statsService = services.NewStatsService(dbPool, streakService)

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

	activityHandler := handlers.NewActivityHandler(eventService, streakService)
	streakHandler := handlers.NewStreakHandler(streakService, statsService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()
	streakService.StartRiskSweepJob()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

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
		w.Write([]byte(`{"status": "healthy", "service": "lockin-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER (identity from the upstream gateway's X-User-ID header)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.UserAuthMiddleware)

	api.HandleFunc("/activity/complete", activityHandler.CompletePact).Methods("POST")
	api.HandleFunc("/activity/focus", activityHandler.RecordFocusSession).Methods("POST")
	api.HandleFunc("/activity/focus", activityHandler.GetFocusSessions).Methods("GET")

	api.HandleFunc("/streak", streakHandler.GetStreak).Methods("GET")
	api.HandleFunc("/streak/at-risk", streakHandler.CheckAtRisk).Methods("GET")
	api.HandleFunc("/streak/freeze", streakHandler.UseFreeze).Methods("POST")
	api.HandleFunc("/heatmap", streakHandler.GetHeatmap).Methods("GET")
	api.HandleFunc("/stats", streakHandler.GetUserStats).Methods("GET")

	api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	api.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	api.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	api.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-User-ID"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
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

	streakService.StopRiskSweepJob()

	log.Println("Server shutdown complete")
}
