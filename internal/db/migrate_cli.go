package db

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
)

// RunMigrateCommand handles the 'migrate' subcommand dispatching.
func RunMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 {
		PrintMigrateHelp()
		os.Exit(1)
	}
	action := args[0]

	migrations, err := MigrationsFS()
	if err != nil {
		log.Fatalf("Failed to load embedded migrations: %v", err)
	}

	// Open without schema initialization; migrations own the schema here.
	database, err := OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch action {
	case "up":
		log.Printf("Running migrations...")
		if err := database.MigrateUp(migrations); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("All migrations applied")
		logVersion(database, migrations)

	case "down":
		log.Printf("Rolling back one migration...")
		if err := database.MigrateDown(migrations); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Migration rolled back")
		logVersion(database, migrations)

	case "status":
		version, dirty, err := database.MigrateVersion(migrations)
		if err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
		fmt.Printf("Current version: %d\n", version)
		fmt.Printf("Dirty: %v\n", dirty)
		if dirty {
			fmt.Println("WARNING: a migration failed mid-execution; inspect the database and use 'migrate force' to recover")
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: zazi-izandi migrate force <version_number>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version number %q: %v", args[1], err)
		}
		if err := database.MigrateForce(migrations, version); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		log.Printf("Forced migration version to %d", version)

	case "help":
		PrintMigrateHelp()

	default:
		fmt.Printf("Unknown migrate action: %s\n\n", action)
		PrintMigrateHelp()
		os.Exit(1)
	}
}

func logVersion(database *DB, migrations fs.FS) {
	version, dirty, _ := database.MigrateVersion(migrations)
	log.Printf("Current version: %d (dirty: %v)", version, dirty)
}

// PrintMigrateHelp prints usage for the migrate subcommand.
func PrintMigrateHelp() {
	fmt.Println("Usage: zazi-izandi migrate <action>")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  up       Apply all pending migrations")
	fmt.Println("  down     Roll back the most recent migration")
	fmt.Println("  status   Show current migration version")
	fmt.Println("  force    Force the version (recovery from dirty state)")
	fmt.Println("  help     Show this help")
}
