// migrate applies the embedded goose migrations to the configured database.
//
//	migrate [--config config.yaml] [--dir path] up|down|status|version|reset
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	flag "github.com/spf13/pflag"

	"github.com/maxviazov/matchup-stats-service/internal/config"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
	"github.com/maxviazov/matchup-stats-service/migrations"
)

func main() {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	dir := fs.String("dir", "", "read migrations from this directory instead of the embedded set")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [--config path] [--dir path] up|down|status|version|reset")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	db, err := sql.Open("pgx", repository.DSN(cfg.Postgres))
	if err != nil {
		log.Fatalf("❌ Postgres open failed: %v", err)
	}
	defer db.Close()

	migrationsDir := migrations.Dir
	if *dir != "" {
		goose.SetBaseFS(nil)
		migrationsDir = *dir
	} else {
		goose.SetBaseFS(migrations.FS)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("❌ goose dialect: %v", err)
	}

	command := fs.Arg(0)
	if err := goose.Run(command, db, migrationsDir, fs.Args()[1:]...); err != nil {
		log.Fatalf("❌ goose %s: %v", command, err)
	}
}
