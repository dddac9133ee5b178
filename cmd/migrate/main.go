package main

import (
	"flag"
	"log"
	"os"

	"support-chat-be/internal/model"
	"support-chat-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	reset := flag.Bool("reset", false, "drop every table before recreating the schema")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, database.Options{Verbose: true})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	defer func() { _ = database.Close(db) }()

	// 3. Create the schema
	models := model.All()
	if *reset {
		log.Printf("Dropping and recreating %d tables...", len(models))
		err = database.Reset(db, models...)
	} else {
		log.Printf("Running AutoMigrate for %d tables...", len(models))
		err = database.Migrate(db, models...)
	}
	if err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	log.Println("Migration completed successfully.")
}
