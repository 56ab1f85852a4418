package api

import (
	"net/http"
	"time"

	// Registers the swagger spec.
	_ "cosmic-chat/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter wires every route of the relay API.
func NewRouter(chatHandler *ChatHandler, credentialHandler *CredentialHandler, modelHandler *ModelHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- Credential ---
			r.Get("/credential", credentialHandler.HandleStatus)
			r.Post("/credential", credentialHandler.HandleSave)
			r.Delete("/credential", credentialHandler.HandleClear)
			r.Post("/credential/validate", credentialHandler.HandleValidate)

			// --- Settings ---
			r.Get("/settings", chatHandler.GetSettings)
			r.Put("/settings", chatHandler.UpdateSettings)

			// --- Chats ---
			r.Get("/chats", chatHandler.GetChats)
			r.Get("/chats/{chatID}", chatHandler.GetChat)
			r.Delete("/chats/{chatID}", chatHandler.HandleDeleteChat)

			// --- Models ---
			r.Get("/models", modelHandler.HandleListModels)
		})

		// Streaming routes hold the connection open; the relay enforces its
		// own timeout.
		r.Group(func(r chi.Router) {
			r.Post("/chat", chatHandler.HandleStreamMessage)
		})
	})

	fileServer := http.FileServer(http.Dir("./frontend/dist"))
	r.Handle("/*", http.StripPrefix("/", fileServer))

	return r
}
