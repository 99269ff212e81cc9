package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/fitdeed/fitdeed-backend/internal/config"
	"github.com/fitdeed/fitdeed-backend/internal/database"
	"github.com/fitdeed/fitdeed-backend/internal/handlers"
	"github.com/fitdeed/fitdeed-backend/internal/llm"
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/internal/repository"
	"github.com/fitdeed/fitdeed-backend/internal/services"
	"github.com/fitdeed/fitdeed-backend/internal/store"
	"github.com/fitdeed/fitdeed-backend/pkg/logger"
	"github.com/fitdeed/fitdeed-backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Local durable cache for anonymous sessions
	cache, err := store.NewFileCache(cfg.CacheDir)
	if err != nil {
		log.Fatalf("Cache directory error: %v", err)
	}

	// Gemini-backed plan generation client
	generator, closeGen, err := llm.NewGenerator(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Generator init error: %v", err)
	}
	defer closeGen()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	planRepos := map[models.PlanKind]*repository.PlanRepository{
		models.KindWorkout: repository.NewPlanRepository(db, models.KindWorkout),
		models.KindDiet:    repository.NewPlanRepository(db, models.KindDiet),
	}

	// --- Services ---
	userService := services.NewUserService(userRepo)
	sessions := services.NewSessionManager(planRepos, favoriteRepo, categoryRepo, cache, generator)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, sessions, cfg)
	planHandler := handlers.NewPlanHandler(sessions)
	favoriteHandler := handlers.NewFavoriteHandler(sessions)
	generateHandler := handlers.NewGenerateHandler(sessions, generator)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// User routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/logout", userHandler.LogoutHandler).Methods("POST")

	// Plan routes: browsing is open, identity optional (anonymous sessions
	// run on the local cache)
	planRoutes := router.PathPrefix("/plans").Subrouter()
	planRoutes.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	planRoutes.HandleFunc("/{kind}/categories", planHandler.ListCategoriesHandler).Methods("GET")
	planRoutes.HandleFunc("/{kind}", planHandler.ListPlansHandler).Methods("GET")
	planRoutes.HandleFunc("/{kind}", planHandler.CreatePlanHandler).Methods("POST")
	planRoutes.HandleFunc("/{kind}/{id}", planHandler.GetPlanHandler).Methods("GET")
	planRoutes.HandleFunc("/{kind}/{id}", planHandler.UpdatePlanHandler).Methods("PUT")
	planRoutes.HandleFunc("/{kind}/{id}", planHandler.DeletePlanHandler).Methods("DELETE")

	// Favorite routes
	favoriteRoutes := router.PathPrefix("/favorites").Subrouter()
	favoriteRoutes.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	favoriteRoutes.HandleFunc("/{kind}", favoriteHandler.GetFavoritesHandler).Methods("GET")
	favoriteRoutes.HandleFunc("/{kind}/plans", favoriteHandler.GetFavoritePlansHandler).Methods("GET")
	favoriteRoutes.HandleFunc("/{kind}/{id}/toggle", favoriteHandler.ToggleFavoriteHandler).Methods("POST")

	// Generation routes
	generateRoutes := router.PathPrefix("/generate").Subrouter()
	generateRoutes.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	generateRoutes.HandleFunc("/workout", generateHandler.GenerateWorkoutHandler).Methods("POST")
	generateRoutes.HandleFunc("/suggestions", generateHandler.GenerateSuggestionsHandler).Methods("POST")
	generateRoutes.HandleFunc("/review", generateHandler.GetReviewHandler).Methods("GET")
	generateRoutes.HandleFunc("/review/toggle", generateHandler.ToggleExerciseHandler).Methods("POST")
	generateRoutes.HandleFunc("/review/commit", generateHandler.CommitReviewHandler).Methods("POST")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Anon-Session"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
