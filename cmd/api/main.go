package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/classcal/server/docs"
	"github.com/classcal/server/internal/auth"
	"github.com/classcal/server/internal/calendar"
	"github.com/classcal/server/internal/config"
	"github.com/classcal/server/internal/database"
	"github.com/classcal/server/internal/event"
	"github.com/classcal/server/internal/user"
	mw "github.com/classcal/server/pkg/middleware"
)

// @title           ClassCal API
// @version         1.0
// @description     Multi-tenant class calendar: join-code membership and calendar-scoped events.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file before reading config
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	if envErr != nil {
		logger.Debug().Msg("no .env file found, using environment variables")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.MigrateUp(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	logger.Info().Msg("connected to database")

	// Auth collaborators
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	revocations := auth.NewMemoryRevocationStore(time.Minute)
	defer revocations.Close()
	authware := mw.Auth(tokens, revocations)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, tokens, revocations, logger)
	userHandler := user.NewHandler(userService)

	// Calendar feature
	calendarRepo := calendar.NewRepository(db)
	calendarService := calendar.NewService(calendarRepo, logger)
	calendarHandler := calendar.NewHandler(calendarService)

	// Event feature (scoped through the calendar service)
	eventRepo := event.NewRepository(db)
	eventService := event.NewService(eventRepo, calendarService, logger)
	eventHandler := event.NewHandler(eventService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", userHandler.AuthRoutes(authware))
		r.Mount("/calendars", calendarHandler.Routes(authware))

		r.Group(func(r chi.Router) {
			r.Use(authware)
			r.Mount("/events", eventHandler.Routes())
			r.Mount("/profile", userHandler.ProfileRoutes())
		})
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
