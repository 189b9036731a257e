package main

import (
	"context"
	"flag"
	"log"

	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
)

func main() {
	dir := flag.String("dir", "migrations", "directory with SQL migrations")
	flag.Parse()

	command, args := "up", flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg := config.MustLoad()

	dbpool, dbErr := repository.NewDatabase(context.Background(), cfg.Postgres)
	if dbErr != nil {
		log.Fatalf("Failed to connect to DB: %v", dbErr)
	}
	defer dbpool.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	dtb := stdlib.OpenDBFromPool(dbpool)
	defer dtb.Close()

	if migrationErr := goose.Run(command, dtb, *dir, args...); migrationErr != nil {
		log.Fatalf("goose %s: %v", command, migrationErr)
	}

	log.Printf("✅ Migration command %q applied successfully", command)
}
