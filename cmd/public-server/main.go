package main

import (
	"log"

	"livechat-backend/internal/api"
	"livechat-backend/internal/api/router"
	"livechat-backend/internal/database"
	"livechat-backend/internal/env"
)

func main() {
	if err := env.Validate(env.AWSRegion); err != nil {
		log.Fatal(err)
	}

	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	server := api.NewAPIServer(":82", "/api/public/v1", db)
	server.Register(
		router.RegisterUtilsRoutes,
		router.RegisterWidgetRoutes,
	)

	log.Fatal(server.Run())
}
