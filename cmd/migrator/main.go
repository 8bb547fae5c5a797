package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var migrationPath, databaseURL, direction string
	flag.StringVar(&databaseURL, "database_url", "", "database URL, with or without the postgres:// scheme")
	flag.StringVar(&migrationPath, "migration-path", "./migrations", "directory holding the migrations")
	flag.StringVar(&direction, "direction", "up", "up or down")
	flag.Parse()

	if databaseURL == "" {
		panic("database URL is required")
	}
	if !strings.Contains(databaseURL, "://") {
		databaseURL = "postgres://" + databaseURL
	}

	m, err := migrate.New("file://"+migrationPath, databaseURL)
	if err != nil {
		panic(err)
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		panic(fmt.Sprintf("unknown direction %q", direction))
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")
			return
		}
		panic(err)
	}

	fmt.Println("Migrations applied:", direction)
}
