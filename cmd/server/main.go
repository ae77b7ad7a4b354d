package main

import (
	"log"
	"net/http"
	"time"

	"transport-routing-service/internal/adapters/cache"
	"transport-routing-service/internal/adapters/repositories"
	"transport-routing-service/internal/api"
	"transport-routing-service/internal/api/handlers"
	"transport-routing-service/internal/config"
	"transport-routing-service/internal/platform/db"
	"transport-routing-service/internal/ports"
	"transport-routing-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	routeRepo := &repositories.PostgresRouteRepository{DB: conn}
	shipmentRepo := &repositories.PostgresShipmentRepository{DB: conn}

	var directory ports.CustomerDirectory = &repositories.PostgresCustomerDirectory{DB: conn}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		directory = cache.NewCachedCustomerDirectory(directory, cache.NewRedisLocationCache(client, 15*time.Minute))
		log.Printf("Customer location cache enabled addr=%s", cfg.RedisAddr)
	}

	planner := services.NewPlanner(routeRepo, shipmentRepo, directory, cfg.Planning)
	router := api.NewRouter(conn, &handlers.RouteHandler{
		Repo:    routeRepo,
		Planner: planner,
	})

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
