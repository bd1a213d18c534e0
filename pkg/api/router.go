// Package api provides HTTP API server components.
package api

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/goclaw/anima/config"
	"github.com/goclaw/anima/pkg/api/handlers"
	"github.com/goclaw/anima/pkg/api/middleware"
	"github.com/goclaw/anima/pkg/logger"

	_ "github.com/goclaw/anima/docs/swagger" // Import generated docs
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Chat handles conversation turns
	Chat *handlers.ChatHandler

	// Conversation exposes the bounded window
	Conversation *handlers.ConversationHandler

	// Providers handles generation backend admin endpoints
	Providers *handlers.ProviderHandler

	// Memory handles long-term memory endpoints
	Memory *handlers.MemoryHandler

	// Emotions exposes the emotional state
	Emotions *handlers.EmotionHandler

	// Personality exposes the personality layer
	Personality *handlers.PersonalityHandler

	// Reflections exposes stored self-reflections
	Reflections *handlers.ReflectionHandler

	// Health handles health check endpoints
	Health *handlers.HealthHandler

	// WebSocket handles /ws connections
	WebSocket *handlers.WebSocketHandler

	// Metrics is the optional metrics recorder
	Metrics middleware.MetricsRecorder

	// Tracing enables HTTP span creation
	Tracing bool
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	if handlers.Metrics != nil {
		r.Use(middleware.Metrics(handlers.Metrics))
	}
	if handlers.Tracing {
		r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))
	r.Use(middleware.Timeout(cfg.Server.HTTP.RequestTimeout))

	RegisterRoutes(r, handlers)

	return r
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(r chi.Router, handlers *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		if handlers.Chat != nil {
			r.Post("/chat", handlers.Chat.Chat)
		}

		if handlers.Conversation != nil {
			r.Get("/conversation", handlers.Conversation.Get)
			r.Delete("/conversation", handlers.Conversation.Clear)
		}

		if handlers.Providers != nil {
			r.Route("/providers", func(r chi.Router) {
				r.Get("/", handlers.Providers.List)
				r.Post("/switch", handlers.Providers.Switch)
				r.Post("/test", handlers.Providers.Test)
				r.Post("/health", handlers.Providers.Health)
			})
		}

		if handlers.Memory != nil {
			r.Route("/memory", func(r chi.Router) {
				r.Get("/", handlers.Memory.List)
				r.Post("/", handlers.Memory.Remember)
				r.Get("/search", handlers.Memory.Search)
				r.Get("/stats", handlers.Memory.Stats)
				r.Delete("/weak", handlers.Memory.DeleteWeak)
			})
		}

		if handlers.Emotions != nil {
			r.Get("/emotions", handlers.Emotions.Get)
		}

		if handlers.Personality != nil {
			r.Get("/personality", handlers.Personality.Get)
			r.Put("/personality/mood", handlers.Personality.SetMood)
		}

		if handlers.Reflections != nil {
			r.Get("/reflections", handlers.Reflections.List)
		}
	})

	// Health check routes (not versioned)
	if handlers.Health != nil {
		r.Get("/health", handlers.Health.Health)
		r.Get("/ready", handlers.Health.Ready)
		r.Get("/status", handlers.Health.Status)
	}

	if handlers.WebSocket != nil {
		r.Get("/ws", handlers.WebSocket.ServeHTTP)
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
