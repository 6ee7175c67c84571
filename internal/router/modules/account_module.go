package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/projboard/projboard/internal/container"
	handlers "github.com/projboard/projboard/internal/interface/http"
	"github.com/projboard/projboard/internal/interface/middleware"
	"github.com/projboard/projboard/pkg/helpers"
)

// AccountModule wires account + profile handlers into routes.
// Public: POST /api/register, POST /api/login, POST /api/refresh
// Protected: POST /api/logout, GET/PUT /api/profile, POST /api/profile/avatar
type AccountModule struct {
	Accounts *handlers.AccountHandler
	Profile  *handlers.ProfileHandler
	JWT      *helpers.JWTManager
}

func NewAccountModule(a *handlers.AccountHandler, p *handlers.ProfileHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Accounts: a, Profile: p, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Accounts.Register)
	rg.POST("/login", loginLimiter, m.Accounts.Login)
	rg.POST("/refresh", refreshLimiter, m.Accounts.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByAccountID(), nil),
	)
	{
		auth.POST("/logout", m.Accounts.Logout)
		auth.GET("/profile", m.Profile.Get)
		auth.PUT("/profile", m.Profile.Update)
		auth.POST("/profile/avatar", m.Profile.UploadAvatar)
	}
}
