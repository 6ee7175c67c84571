package router

import (
	"github.com/projboard/projboard/internal/application"
	"github.com/projboard/projboard/internal/container"
	pginfra "github.com/projboard/projboard/internal/infrastructure/postgres"
	handlers "github.com/projboard/projboard/internal/interface/http"
	"github.com/projboard/projboard/internal/router/modules"
)

// InitModules builds all feature modules from container singletons and
// registers them with the router registry. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	accounts := pginfra.NewAccountRepository(container.GetPGPool())
	listings := pginfra.NewListingRepository(container.GetPGPool())

	accountSvc := application.NewAccountService(
		accounts,
		container.GetJWT(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		cfg.AppName,
		cfg.MailSendEnabled,
	)
	listingSvc := application.NewListingService(
		listings,
		accounts,
		container.GetLogger(),
		container.GetES(),
		cfg.ESListingsIndex,
	)

	accountHandler := handlers.NewAccountHandler(accountSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	profileHandler := handlers.NewProfileHandler(accountSvc, container.GetLogger())
	listingHandler := handlers.NewListingHandler(listingSvc, container.GetLogger())

	r.Add(modules.NewAccountModule(accountHandler, profileHandler, container.GetJWT()))
	r.Add(modules.NewListingModule(listingHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
