package main

import (
	"context"
	"flag"
	"log"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"load-tracker/migrations"
	"load-tracker/pkg/config"
	"load-tracker/pkg/database/postgresql"
	"load-tracker/pkg/service"
	"load-tracker/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 database seeders")
	log.Println("======================================================")

	runMigrate := flag.Bool("migrate", false, "apply pending migrations")
	runStatus := flag.Bool("status", false, "print the migration status")
	runCore := flag.Bool("core", false, "seed statuses, locations and notification groups")
	tokenFor := flag.String("token", "", "ensure a user with this username exists and print an access token for it")
	runAll := flag.Bool("all", false, "equivalent to -migrate -core")

	flag.Parse()

	if !*runMigrate && !*runStatus && !*runCore && *tokenFor == "" && !*runAll {
		log.Println("❌ nothing selected.")
		log.Println("")
		flag.PrintDefaults()
		log.Println("")
		log.Println("examples:")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("  go run ./seeders/cmd/seed -token admin")
		return
	}

	cfg := config.New()
	dbPool, err := postgresql.ConnectDB(cfg.Postgres.DSN, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer dbPool.Close()

	if *runAll || *runMigrate || *runStatus {
		sqlDB := stdlib.OpenDBFromPool(dbPool)
		defer sqlDB.Close()
		if *runAll || *runMigrate {
			if err := migrations.Up(sqlDB); err != nil {
				log.Fatalf("❌ %v", err)
			}
		}
		if *runStatus {
			if err := migrations.Status(sqlDB); err != nil {
				log.Fatalf("❌ %v", err)
			}
		}
	}

	if *runAll || *runCore {
		seeders.SeedCoreDictionaries(dbPool)
	}

	if *tokenFor != "" {
		id, err := seeders.SeedAdminUser(context.Background(), dbPool, *tokenFor, "")
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, zap.NewNop())
		token, err := jwtSvc.GenerateAccessToken(id)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Printf("🔑 access token for '%s' (valid %s):", *tokenFor, cfg.JWT.AccessTokenTTL)
		log.Println(token)
	}

	log.Println("✅ done")
}
