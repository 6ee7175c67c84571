package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/projboard/projboard/internal/container"
	handlers "github.com/projboard/projboard/internal/interface/http"
	"github.com/projboard/projboard/internal/interface/middleware"
	"github.com/projboard/projboard/pkg/helpers"
)

// ListingModule wires the shared project feed.
// The feed itself is public (the app shows it before login on some
// screens); creating and deleting require an authenticated session.
type ListingModule struct {
	Handler *handlers.ListingHandler
	JWT     *helpers.JWTManager
}

func NewListingModule(h *handlers.ListingHandler, jwt *helpers.JWTManager) *ListingModule {
	return &ListingModule{Handler: h, JWT: jwt}
}

func (m *ListingModule) Register(rg *gin.RouterGroup) {
	feedLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	searchLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/listings", feedLimiter, m.Handler.Feed)
	rg.GET("/listings/search", searchLimiter, m.Handler.Search)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByAccountID(), nil))
	{
		auth.POST("/listings", m.Handler.Create)
		auth.DELETE("/listings/:id", m.Handler.Delete)
	}
}
