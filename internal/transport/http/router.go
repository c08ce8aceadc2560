package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/presence-hub/internal/transport/http/middleware"
	"github.com/cwrk-planet/presence-hub/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	CORSOrigins []string
}

func NewRouter(h *Handler, wsHandler http.HandlerFunc, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(httputil.MiddlewareRequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", httputil.HeaderRequestID, httpmw.HeaderUserID},
		ExposedHeaders: []string{httputil.HeaderRequestID},
		MaxAge:         300,
	}))

	// WS endpoint: long-lived, so no logging or timeout middleware.
	r.Get("/ws", wsHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(httputil.MiddlewareLogging)
		pr.Use(middlewareChi.Timeout(30 * time.Second))
		pr.Use(httpmw.Identity)
		pr.Use(httpmw.Touch(h.memberSvc))

		pr.Get("/", h.Index)
		pr.Route("/api", func(api chi.Router) {
			api.Get("/status", h.Status)
			api.Post("/auth/login", h.Login)
			api.Get("/chats", h.ListChats)
			api.Get("/chats/{id}/messages", h.ChatHistory)
			api.Get("/camera/status", h.CameraStatus)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
