package main

import (
	"os"

	"github.com/booknest/booknest/internal/auth"
	"github.com/booknest/booknest/internal/books"
	"github.com/booknest/booknest/internal/genres"
	"github.com/booknest/booknest/internal/health"
	"github.com/booknest/booknest/internal/notifier"
	"github.com/booknest/booknest/internal/readinglists"
	"github.com/booknest/booknest/internal/recommend"
	"github.com/booknest/booknest/internal/userbooks"
	"github.com/booknest/booknest/pkg/database"
	"github.com/booknest/booknest/pkg/logger"
	"github.com/booknest/booknest/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env if present (optional)
	_ = godotenv.Load()

	logLevel := logger.INFO
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logLevel = logger.LogLevel(level)
	}
	jsonFormat := os.Getenv("LOG_FORMAT") == "json"
	logger.Init(logLevel, jsonFormat, os.Stdout)

	log := logger.GetLogger().WithContext("component", "api_server")
	log.Info("starting_api_server", "version", "1.0.0")

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/booknest.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Error("failed_to_open_database", "error", err.Error(), "path", dbPath)
		os.Exit(1)
	}
	defer db.Close()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
		log.Info("using_default_frontend_url", "url", frontendURL)
	}

	// Wire handlers; main owns the database handle and passes it down.
	events := notifier.NewHub()
	bookStore := books.NewStore(db)

	authHandler := auth.NewHandler(db)
	bookHandler := books.NewHandler(bookStore, events)
	genreHandler := genres.NewHandler(db)
	userBookHandler := userbooks.NewHandler(db, events)
	listHandler := readinglists.NewHandler(db, events)
	recommendHandler := recommend.NewHandler(db, bookStore,
		recommend.NewGoogleBooksClient(os.Getenv("GOOGLE_BOOKS_API_KEY")),
		recommend.NewTasteDiveClient(os.Getenv("TASTEDIVE_API_KEY")))
	healthHandler := health.NewHandler(db)

	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{frontendURL}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.ExposeHeaders = []string{"Content-Length"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	router.GET("/health", healthHandler.Alive)
	router.GET("/readyz", healthHandler.Ready)
	router.GET("/metrics", metrics.Handler)
	router.GET("/ws/events", events.HandleWS)

	// Auth routes (public)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}
	protectedAuth := router.Group("/api/auth")
	protectedAuth.Use(auth.Identify(), auth.RequireUser())
	{
		protectedAuth.PUT("/nickname", authHandler.UpdateNickname)
	}

	// Book routes; the identity middleware resolves the pseudo-token but
	// never rejects.
	bookGroup := router.Group("/api/books")
	bookGroup.Use(auth.Identify())
	{
		bookGroup.GET("", bookHandler.List)
		bookGroup.POST("", bookHandler.Create)
		bookGroup.GET("/:id", bookHandler.GetByID)
		bookGroup.PUT("/:id", bookHandler.Update)
		bookGroup.DELETE("/:id", bookHandler.Delete)
		bookGroup.POST("/scrape", bookHandler.Scrape)
	}

	genreGroup := router.Group("/api/genres")
	{
		genreGroup.GET("", genreHandler.GetAll)
		genreGroup.POST("", genreHandler.Create)
		genreGroup.GET("/:id", genreHandler.GetByID)
		genreGroup.PUT("/:id", genreHandler.Update)
		genreGroup.DELETE("/:id", genreHandler.Delete)
	}

	userBookGroup := router.Group("/api/user-books")
	userBookGroup.Use(auth.Identify())
	{
		userBookGroup.GET("", userBookHandler.List)
		userBookGroup.POST("", userBookHandler.Upsert)
		userBookGroup.GET("/read", userBookHandler.ListRead)
		userBookGroup.GET("/:bookId", userBookHandler.Get)
		userBookGroup.PUT("/:bookId", userBookHandler.Update)
		userBookGroup.DELETE("/:bookId", userBookHandler.Delete)
	}

	// Reading lists: reads fall back to the default user, mutations require
	// a resolvable user.
	listGroup := router.Group("/api/reading-lists")
	listGroup.Use(auth.Identify())
	{
		listGroup.GET("", listHandler.List)
		listGroup.GET("/:id", listHandler.GetByID)

		mutating := listGroup.Group("")
		mutating.Use(auth.RequireUser())
		{
			mutating.POST("", listHandler.Create)
			mutating.PUT("/:id", listHandler.Update)
			mutating.DELETE("/:id", listHandler.Delete)
			mutating.POST("/:id/books", listHandler.AddBook)
			mutating.DELETE("/:id/books", listHandler.RemoveBook)
		}
	}

	recGroup := router.Group("/api/recommendations")
	recGroup.Use(auth.Identify())
	{
		recGroup.GET("", recommendHandler.ForUser)
		recGroup.GET("/reading-list/:id", recommendHandler.ForReadingList)
		recGroup.GET("/google-books", recommendHandler.GoogleBooks)
		recGroup.GET("/tastedive", recommendHandler.TasteDive)
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("api_server_listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("api_server_stopped", "error", err.Error())
		os.Exit(1)
	}
}
