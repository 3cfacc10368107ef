package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/expense-tracker-api/config"
	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "Password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password, name, email_verified)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	now := time.Now()
	samples := []struct {
		kind        string
		amountCents int64
		category    string
		description string
		daysAgo     int
	}{
		{"income", 350000, "Salary", "Monthly salary", 25},
		{"income", 42000, "Freelance", "Side project invoice", 12},
		{"expense", 85000, "Rent", "September rent", 24},
		{"expense", 12350, "Food", "Groceries", 7},
		{"expense", 4500, "Transport", "Metro card top-up", 5},
		{"expense", 7999, "Entertainment", "Concert ticket", 3},
		{"expense", 2150, "Food", "Lunch out", 1},
	}
	for _, s := range samples {
		if _, err := db.Exec(`
			INSERT INTO transactions (user_id, kind, amount_cents, category, description, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, s.kind, s.amountCents, s.category, s.description, now.AddDate(0, 0, -s.daysAgo)); err != nil {
			log.Fatalf("failed to seed transaction: %v", err)
		}
	}
	fmt.Printf("seeded %d transactions\n", len(samples))
}
