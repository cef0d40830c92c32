package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"linkstash/internal/chat"
	"linkstash/internal/config"
	"linkstash/internal/database"
	"linkstash/internal/messenger"
	"linkstash/internal/middlewares"
	"linkstash/internal/repositories"
	"linkstash/internal/services"
)

type Server struct {
	cfg             *config.Config
	httpServer      *http.Server
	db              database.Service
	userService     services.UserService
	bookmarkService services.BookmarkService
	chatRelay       services.ChatRelay
	chatExecutor    *chat.Executor
	telegramSender  *messenger.TelegramSender
	whatsAppSender  *messenger.WhatsAppSender
}

func NewServer() *Server {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	db := database.New()

	// Webhook endpoints are public, so the rate-limiter visitor maps need the
	// cleanup loop or they grow for every caller IP.
	go middlewares.CleanupVisitors()

	userRepo := repositories.NewUserRepository(db)
	bookmarkRepo := repositories.NewBookmarkRepository(db)

	bookmarkService := services.NewBookmarkService(bookmarkRepo)

	s := &Server{
		cfg:             cfg,
		db:              db,
		userService:     services.NewUserService(userRepo),
		bookmarkService: bookmarkService,
		chatRelay:       services.NewChatRelay(cfg),
		chatExecutor:    chat.NewExecutor(bookmarkService),
		telegramSender:  messenger.NewTelegramSender(cfg),
		whatsAppSender:  messenger.NewWhatsAppSender(cfg),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.cfg.Port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
