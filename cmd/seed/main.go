package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"notevault/internal/config"
	"notevault/internal/db"
	"notevault/internal/model"
	"notevault/internal/repository"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Notes    []seedNote
}

type seedNote struct {
	Title   string
	Content string
}

var seedUsers = []seedUser{
	{
		Name:     "Alice Example",
		Email:    "alice@example.com",
		Password: "password123",
		Notes: []seedNote{
			{Title: "Groceries", Content: "Milk, eggs, coffee"},
			{Title: "Ideas", Content: "Weekend project: tidy the garage"},
		},
	},
	{
		Name:     "Bob Example",
		Email:    "bob@example.com",
		Password: "password123",
		Notes: []seedNote{
			{Title: "Reading list", Content: "The Go Programming Language"},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Note{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)
	ctx := context.Background()

	created, skipped := 0, 0
	for _, su := range seedUsers {
		existing, err := userRepo.FindByEmail(ctx, su.Email)
		if err == nil && existing != nil {
			log.Printf("User %s already exists, skipping", su.Email)
			skipped++
			continue
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check user %s: %v", su.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), 10)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", su.Email, err)
		}

		user := &model.User{
			Name:         su.Name,
			Email:        su.Email,
			PasswordHash: string(hash),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.Email, err)
		}

		for _, sn := range su.Notes {
			note := &model.Note{
				Title:   sn.Title,
				Content: sn.Content,
				UserID:  user.ID,
			}
			if err := noteRepo.Create(ctx, note); err != nil {
				log.Fatalf("Failed to create note %q for %s: %v", sn.Title, su.Email, err)
			}
		}
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}
