package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkstash/internal/handlers"
	"linkstash/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.CorsMiddleware)
	r.Use(middlewares.RateLimit)
	r.Use(middlewares.PrometheusMiddleware)

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler)
	r.HandleFunc("/health", ch.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	s.registerWebhookRoutes(r)
	s.registerBookmarkRoutes(r)
	s.registerAuthRoutes(r)

	return r
}

func (s *Server) registerWebhookRoutes(r *mux.Router) {
	th := handlers.NewTelegramWebhookHandler(s.userService, s.chatExecutor, s.chatRelay, s.telegramSender, s.cfg)
	wh := handlers.NewWhatsAppWebhookHandler(s.userService, s.chatExecutor, s.whatsAppSender)

	r.HandleFunc("/webhooks/telegram", th.HandleWebhook).Methods("POST", "OPTIONS")
	r.HandleFunc("/webhooks/whatsapp", wh.HandleWebhook).Methods("POST", "OPTIONS")
}

func (s *Server) registerBookmarkRoutes(r *mux.Router) {
	bh := handlers.NewBookmarksHandler(s.bookmarkService)

	r.Handle("/api/bookmarks", middlewares.AuthMiddleware(http.HandlerFunc(bh.GetBookmarks))).Methods("GET", "OPTIONS")
	r.Handle("/api/bookmarks", middlewares.AuthMiddleware(http.HandlerFunc(bh.AddBookmark))).Methods("POST", "OPTIONS")
	r.Handle("/api/bookmarks/{id}", middlewares.AuthMiddleware(http.HandlerFunc(bh.GetBookmarkByID))).Methods("GET", "OPTIONS")
	r.Handle("/api/bookmarks/{id}", middlewares.AuthMiddleware(http.HandlerFunc(bh.DeleteBookmark))).Methods("DELETE", "OPTIONS")
	r.Handle("/api/bookmarks/{id}", middlewares.AuthMiddleware(http.HandlerFunc(bh.UpdateBookmark))).Methods("PUT", "OPTIONS")
}

func (s *Server) registerAuthRoutes(r *mux.Router) {
	uh := handlers.NewUserHandler(s.userService)

	r.HandleFunc("/api/auth/register", uh.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/login", uh.Login).Methods("POST", "OPTIONS")
	r.Handle("/api/me", middlewares.AuthMiddleware(http.HandlerFunc(uh.GetMyProfile))).Methods("GET", "OPTIONS")
	r.Handle("/api/me", middlewares.AuthMiddleware(http.HandlerFunc(uh.UpdateMyProfile))).Methods("PATCH", "PUT", "OPTIONS")
	r.Handle("/api/me", middlewares.AuthMiddleware(http.HandlerFunc(uh.DeleteMyProfile))).Methods("DELETE", "OPTIONS")
	r.Handle("/api/me/link/telegram", middlewares.AuthMiddleware(http.HandlerFunc(uh.LinkTelegram))).Methods("POST", "OPTIONS")
	r.Handle("/api/me/link/phone", middlewares.AuthMiddleware(http.HandlerFunc(uh.LinkPhone))).Methods("POST", "OPTIONS")
}
