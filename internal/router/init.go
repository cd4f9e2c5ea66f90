package router

import (
	"github.com/vidtube/backend/internal/application"
	"github.com/vidtube/backend/internal/container"
	pginfra "github.com/vidtube/backend/internal/infrastructure/postgres"
	handlers "github.com/vidtube/backend/internal/interface/http"
	"github.com/vidtube/backend/internal/router/modules"
)

func buildServices() (*application.SessionService, *application.ProfileService) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	subs := pginfra.NewSubscriptionRepository(pool)
	videos := pginfra.NewVideoRepository(pool)

	media := application.NewMediaStore(container.GetGCS(), cfg.GCSBucket)
	index := application.NewChannelIndex(container.GetES(), cfg.ESChannelsIndex, container.GetLogger())

	sessions := application.NewSessionService(
		users,
		container.GetJWT(),
		media,
		container.GetRabbitPub(),
		index,
		container.GetLogger(),
		cfg.AppName,
	)
	profiles := application.NewProfileService(users, subs, videos, media, index, container.GetLogger())
	return sessions, profiles
}

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	sessions, profiles := buildServices()

	userHandler := handlers.NewUserHandler(sessions, profiles, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	channelHandler := handlers.NewChannelHandler(profiles, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewChannelModule(channelHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
