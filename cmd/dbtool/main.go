package main

import (
	"flag"
	"log"

	"transport-routing-service/internal/adapters/repositories"
	"transport-routing-service/internal/config"
	"transport-routing-service/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// dbtool creates the schema and optionally loads a JSON seed fixture.
//
//	dbtool -init
//	dbtool -init -seed
//	dbtool -seed -file data/seeds/routes.json
func main() {
	initSchema := flag.Bool("init", false, "create tables and indexes")
	seed := flag.Bool("seed", false, "load the seed fixture")
	seedFile := flag.String("file", "", "seed fixture path (defaults to SEED_PATH)")
	flag.Parse()

	if !*initSchema && !*seed {
		log.Fatal("nothing to do: pass -init and/or -seed")
	}

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

	if *initSchema {
		if err := repositories.InitSchema(conn); err != nil {
			log.Fatal(err)
		}
		log.Println("Schema initialized")
	}

	if *seed {
		path := *seedFile
		if path == "" {
			path = cfg.SeedPath
		}
		if err := repositories.SeedFromJSON(conn, path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Seed loaded path=%s", path)
	}
}
