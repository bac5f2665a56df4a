//go:build wireinject
// +build wireinject

package di

import (
	"sala/config"
	"sala/infras/jwt"
	"sala/infras/kafka"
	"sala/infras/otel"
	"sala/infras/postgres"
	"sala/infras/redis"
	"sala/infras/s3"
	"sala/internal/events"
	"sala/permissions"
	"sala/shared/cache"
	"sala/shared/keylock"
	"sala/transport/http"
	"sala/transport/http/middleware"
	"sala/transport/http/router"

	"github.com/google/wire"

	authService "sala/internal/domains/auth/service"
	reservationRepository "sala/internal/domains/reservation/repository"
	reservationService "sala/internal/domains/reservation/service"
	roomRepository "sala/internal/domains/room/repository"
	roomService "sala/internal/domains/room/service"
	scheduleRepository "sala/internal/domains/schedule/repository"
	scheduleService "sala/internal/domains/schedule/service"
	tagRepository "sala/internal/domains/tag/repository"
	tagService "sala/internal/domains/tag/service"
	userRepository "sala/internal/domains/user/repository"
	userService "sala/internal/domains/user/service"
	authHandler "sala/internal/handlers/auth"
	reservationHandler "sala/internal/handlers/reservation"
	roomHandler "sala/internal/handlers/room"
	scheduleHandler "sala/internal/handlers/schedule"
	tagHandler "sala/internal/handlers/tag"
	userHandler "sala/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
	permissions.Get,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	keylock.New,
	events.NewPublisher,
)

var authDomain = wire.NewSet(
	userRepository.New,
	authService.New,
)

var userDomain = wire.NewSet(
	userService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var scheduleDomain = wire.NewSet(
	scheduleRepository.New,
	scheduleService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var tagDomain = wire.NewSet(
	tagRepository.New,
	tagService.New,
)

var domains = wire.NewSet(
	authDomain,
	userDomain,
	roomDomain,
	scheduleDomain,
	reservationDomain,
	tagDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	scheduleHandler.New,
	reservationHandler.New,
	tagHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
