package main

import (
	"context"
	"log"

	"livechat-backend/internal/api"
	"livechat-backend/internal/api/router"
	"livechat-backend/internal/database"
	"livechat-backend/internal/env"
	"livechat-backend/internal/gateway"
)

func main() {
	if err := env.Validate(env.AWSRegion, env.StaffSecretKey); err != nil {
		log.Fatal(err)
	}

	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	server := api.NewAPIServer(":83", "/api/ws/v1", db)
	g := gateway.New(server.Chat, server.Widget)

	// The redis bridge is optional. Without it the gateway still works for a
	// single process.
	if addr := env.Get(env.ChatRedisURL); addr != "" {
		publisher := gateway.NewRedisPublisher(addr, env.Get(env.ChatRedisPass), g.Origin())
		g.SetPublisher(publisher)
		go publisher.Listen(context.Background(), g)
	}

	handler := gateway.NewHandler(g)
	server.Register(router.RegisterUtilsRoutes)
	server.HandleRaw("GET "+server.Prefix+"/connect", handler.ServeWS)

	log.Fatal(server.Run())
}
