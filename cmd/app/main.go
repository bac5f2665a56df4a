package main

import (
	"sala/config"
	"sala/di"
	"sala/shared/logger"
)

// @title Sala API
// @version 1.0
// @description Shared facility booking service: rooms, schedules, and reservations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
