package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"moodchat/config"
	"moodchat/internal/domain/user"
	"moodchat/internal/repository"
	"moodchat/pkg/database"
	moodchat_errors "moodchat/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const usage = `
MoodChat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run GORM migrations
  status      Show database connection status
  seed-dev    Seed with development/test users

Flags:
  -dev-pass string  Password for seeded dev users (default "Secret@123")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev
`

func main() {
	devPass := flag.String("dev-pass", "Secret@123", "Password for seeded dev users")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	case "seed-dev":
		runSeedDevelopment(*devPass)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("Migrations applied")
}

func showStatus() {
	if err := database.HealthCheck(); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	fmt.Println("Database connection OK")
}

func runSeedDevelopment(password string) {
	ctx := context.Background()
	repo := repository.NewUserRepository(database.DB)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash dev password: %v", err)
	}

	seeds := []user.User{
		{Username: "alice", Email: "alice@moodchat.dev", DisplayName: "Alice"},
		{Username: "bob", Email: "bob@moodchat.dev", DisplayName: "Bob"},
		{Username: "carol", Email: "carol@moodchat.dev", DisplayName: "Carol"},
	}

	for _, seed := range seeds {
		if _, err := repo.GetByUsername(ctx, seed.Username); err == nil {
			fmt.Printf("User %s already exists, skipping\n", seed.Username)
			continue
		} else if !errors.Is(err, moodchat_errors.ErrNotFound) {
			log.Fatalf("Failed to check user %s: %v", seed.Username, err)
		}

		now := time.Now()
		u := user.User{
			ID:           uuid.New(),
			Username:     seed.Username,
			Email:        seed.Email,
			PasswordHash: string(hash),
			DisplayName:  seed.DisplayName,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.Create(ctx, &u); err != nil {
			log.Fatalf("Failed to seed user %s: %v", seed.Username, err)
		}
		fmt.Printf("Seeded user %s\n", seed.Username)
	}
}
