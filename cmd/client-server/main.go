package main

import (
	"log"

	"livechat-backend/internal/api"
	"livechat-backend/internal/api/router"
	"livechat-backend/internal/database"
	"livechat-backend/internal/env"
	"livechat-backend/internal/jwt"
)

func main() {
	if err := env.Validate(env.AWSRegion, env.StaffSecretKey); err != nil {
		log.Fatal(err)
	}
	jwt.InitRedis()

	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	server := api.NewAPIServer(":81", "/api/client/v1", db)
	server.Register(
		router.RegisterUtilsRoutes,
		router.RegisterAuthRoutes,
		router.RegisterRoomRoutes,
	)

	log.Fatal(server.Run())
}
