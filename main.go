package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"questForgeAPI/handlers"
	"questForgeAPI/internal/cache"
	"questForgeAPI/middleware"
	"questForgeAPI/services"
)

var (
	dbPool             *pgxpool.Pool
	cacheStore         *cache.Store
	userService        *services.UserService
	badgeService       *services.BadgeService
	streakService      *services.StreakService
	questService       *services.QuestService
	habitService       *services.HabitService
	journalService     *services.JournalService
	timeblockService   *services.TimeBlockService
	treasuryService    *services.TreasuryService
	leaderboardService *services.LeaderboardService
	dashboardService   *services.DashboardService
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

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		redisDB, err = strconv.Atoi(raw)
		if err != nil {
			log.Fatal("Invalid REDIS_DB:", err)
		}
	}

	cacheStore, err = cache.NewStore(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	log.Println("Successfully connected to Redis")

	buster := cache.NewBuster(cacheStore)

	userService = services.NewUserService(dbPool)
	badgeService = services.NewBadgeService(dbPool)
	streakService = services.NewStreakService(dbPool, badgeService)
	questService = services.NewQuestService(dbPool, badgeService, buster)
	habitService = services.NewHabitService(dbPool, buster)
	journalService = services.NewJournalService(dbPool, buster)
	timeblockService = services.NewTimeBlockService(dbPool, buster)
	treasuryService = services.NewTreasuryService(dbPool, buster)
	leaderboardService = services.NewLeaderboardService(dbPool, cacheStore, badgeService)
	dashboardService = services.NewDashboardService(
		cacheStore, userService, questService, habitService,
		journalService, timeblockService, leaderboardService, badgeService,
	)

	if err := badgeService.SeedBadges(ctx); err != nil {
		log.Fatal("Failed to seed badge catalog:", err)
	}
	log.Println("Badge catalog seeded")

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
		cacheStore.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	questHandler := handlers.NewQuestHandler(questService)
	habitHandler := handlers.NewHabitHandler(habitService)
	journalHandler := handlers.NewJournalHandler(journalService)
	timeblockHandler := handlers.NewTimeBlockHandler(timeblockService)
	treasuryHandler := handlers.NewTreasuryHandler(treasuryService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	adminHandler := handlers.NewAdminHandler(streakService, badgeService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

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
		w.Write([]byte(`{"status": "healthy", "service": "questforge-api"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/users", userHandler.CreateUser).Methods("POST")

	// Operational endpoints, basic auth like /metrics.
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Handle("/streaks/sweep", middleware.BasicAuthMiddleware(http.HandlerFunc(adminHandler.SweepStreaks))).Methods("POST")
	admin.Handle("/badges/seed", middleware.BasicAuthMiddleware(http.HandlerFunc(adminHandler.SeedBadges))).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")

	protected.HandleFunc("/dashboard", dashboardHandler.GetDashboard).Methods("GET")
	protected.HandleFunc("/leaderboard", leaderboardHandler.GetLeaderboard).Methods("GET")

	protected.HandleFunc("/quests", questHandler.ListActiveQuests).Methods("GET")
	protected.HandleFunc("/quests", questHandler.CreateQuest).Methods("POST")
	protected.HandleFunc("/quests/reorder", questHandler.ReorderQuests).Methods("PUT")
	protected.HandleFunc("/quests/{id}", questHandler.UpdateQuest).Methods("PUT")
	protected.HandleFunc("/quests/{id}", questHandler.DeleteQuest).Methods("DELETE")
	protected.HandleFunc("/quests/{id}/complete", questHandler.CompleteQuest).Methods("POST")

	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}/archive", habitHandler.ArchiveHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}/toggle", habitHandler.ToggleToday).Methods("POST")
	protected.HandleFunc("/habits/{id}/toggle-date", habitHandler.ToggleDate).Methods("POST")

	protected.HandleFunc("/journal", journalHandler.ListEntries).Methods("GET")
	protected.HandleFunc("/journal", journalHandler.CreateEntry).Methods("POST")

	protected.HandleFunc("/timeblocks", timeblockHandler.ListForDay).Methods("GET")
	protected.HandleFunc("/timeblocks", timeblockHandler.CreateTimeBlock).Methods("POST")
	protected.HandleFunc("/timeblocks/{id}", timeblockHandler.DeleteTimeBlock).Methods("DELETE")

	protected.HandleFunc("/treasury/rewards", treasuryHandler.ListRewards).Methods("GET")
	protected.HandleFunc("/treasury/rewards", treasuryHandler.CreateReward).Methods("POST")
	protected.HandleFunc("/treasury/purchase", treasuryHandler.Purchase).Methods("POST")
	protected.HandleFunc("/treasury/purchases", treasuryHandler.ListPurchases).Methods("GET")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
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
