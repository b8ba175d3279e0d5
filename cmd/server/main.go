package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"skillsync/internal/auth"
	"skillsync/internal/connection"
	"skillsync/internal/contact"
	"skillsync/internal/message"
	"skillsync/internal/models"
	"skillsync/internal/profile"
	"skillsync/internal/quiz"
	"skillsync/pkg/cache"
	"skillsync/pkg/database"
	"skillsync/pkg/email"
	"skillsync/pkg/storage"
	"skillsync/pkg/websocket"

	"github.com/gorilla/mux"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize database
	dbConfig := &database.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
	}

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.QuestionSet{},
		&models.Question{},
		&models.Choice{},
		&models.Attempt{},
		&models.AttemptResponse{},
		&models.ConnectionRequest{},
		&models.Message{},
		&models.Contact{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache (question sets + OTP codes)
	redisCache := cache.NewRedisCache(os.Getenv("REDIS_ADDR"))

	// Initialize SMTP mailer for verification and reset codes
	mailer := email.NewSMTPClient(&email.Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	})

	// Initialize object store for avatar uploads
	objectStore, err := storage.NewObjectStore(&storage.Config{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    os.Getenv("MINIO_BUCKET"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}
	if err := objectStore.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("Failed to prepare bucket: %v", err)
	}

	// Initialize notification hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	quizRepo := quiz.NewRepository(db)
	connRepo := connection.NewRepository(db)
	messageRepo := message.NewRepository(db)
	contactRepo := contact.NewRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	authService := auth.NewService(authRepo, redisCache, mailer, jwtSecret)
	quizService := quiz.NewService(quizRepo, redisCache)
	connService := connection.NewService(connRepo, authRepo, wsHub)
	messageService := message.NewService(messageRepo, connService, wsHub)
	contactService := contact.NewService(contactRepo)
	profileService := profile.NewService(authRepo, objectStore)

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	quizHandler := quiz.NewHandler(quizService)
	connHandler := connection.NewHandler(connService)
	messageHandler := message.NewHandler(messageService)
	contactHandler := contact.NewHandler(contactService)
	profileHandler := profile.NewHandler(profileService)

	// Setup router
	router := mux.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Public routes
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/verify-email", authHandler.VerifyEmail).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/forgot-password", authHandler.ForgotPassword).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/reset-password", authHandler.ResetPassword).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/contact", contactHandler.Submit).Methods("POST", "OPTIONS")

	// Authenticated routes
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.JWTMiddleware(jwtSecret))

	apiRouter.HandleFunc("/profile/me", profileHandler.GetMe).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/profile/me", profileHandler.UpdateMe).Methods("PUT")
	apiRouter.HandleFunc("/profile/me/avatar", profileHandler.UploadAvatar).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/profile/{id}", profileHandler.GetUser).Methods("GET", "OPTIONS")

	apiRouter.HandleFunc("/quiz/attempts/mine", quizHandler.ListMyAttempts).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/quiz", quizHandler.CreateQuestionSet).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quiz", quizHandler.ListQuestionSets).Methods("GET")
	apiRouter.HandleFunc("/quiz/{id}/attempt", quizHandler.SubmitAttempt).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quiz/{id}/answers", quizHandler.GetQuestionSetWithAnswers).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/quiz/{id}/active", quizHandler.SetActive).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/quiz/{id}", quizHandler.GetQuestionSet).Methods("GET", "OPTIONS")

	apiRouter.HandleFunc("/connections", connHandler.SendRequest).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/connections", connHandler.ListConnections).Methods("GET")
	apiRouter.HandleFunc("/connections/incoming", connHandler.ListIncoming).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/connections/status/{userId}", connHandler.CheckStatus).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/connections/{id}/respond", connHandler.Respond).Methods("POST", "OPTIONS")

	apiRouter.HandleFunc("/messages", messageHandler.Inbox).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/messages/{userId}", messageHandler.Send).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/messages/{userId}", messageHandler.Conversation).Methods("GET")

	apiRouter.HandleFunc("/contact", contactHandler.List).Methods("GET")
	apiRouter.HandleFunc("/contact/{id}/resolve", contactHandler.Resolve).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/contact/{id}", contactHandler.Delete).Methods("DELETE", "OPTIONS")

	// Notification socket; token accepted via query parameter
	wsRouter := router.PathPrefix("/ws").Subrouter()
	wsRouter.Use(auth.JWTMiddleware(jwtSecret))
	wsRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		wsHub.ServeUser(w, r, principal.ID)
	})

	// Setup server with CORS handler
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}
