package main

import (
	"GoVault/config"
	"GoVault/internal/repo"
	"GoVault/internal/storage"
	"GoVault/router"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	storage.InitMinio()

	router := router.InitRouter()

	router.Run(config.AppConfig.ListenAddr)
}
