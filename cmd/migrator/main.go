package main

import (
	"flag"
	"log"
	"magic-villa-api/config"
	"magic-villa-api/migrations"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к конфигурации")
	command := flag.String("command", "up", "команда goose: up, down, status")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("ошибка загрузки конфигурации: %v", err)
		}
		dsn = cfg.DatabaseConfig.DSN
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}
	db, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := goose.Run(*command, db, "."); err != nil {
		log.Fatalf("migrate %s: %v", *command, err)
	}
	log.Printf("migrations: %s OK", *command)
}
