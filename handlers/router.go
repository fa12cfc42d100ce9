package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/egor/vicai/middleware"
)

// NewRouter wires every route.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(h.NoMethod)

	r.Use(gin.Recovery(), middleware.Logger(h.Log))
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware())
	}
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization"},
		OptionsResponseStatusCode: 200,
	}))

	for _, p := range []string{"/", "/api/chat"} {
		r.POST(p, chatCORS, h.Chat)
		r.OPTIONS(p, chatCORS, h.Options)
	}
	r.GET("/health", h.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	if h.Hub != nil {
		r.GET("/ws", h.ChatWS)
	}

	if h.Auth != nil {
		api := r.Group("/api")
		api.POST("/auth/login", h.Login)

		admin := api.Group("/admin", h.Auth.Middleware())
		admin.GET("/keywords", h.Keywords)
		admin.POST("/keywords/reload", h.ReloadKeywords)
		if h.Hub != nil {
			admin.GET("/events", h.AdminEvents)
		}
	}
	return r
}
