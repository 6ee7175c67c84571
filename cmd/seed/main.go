package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/projboard/projboard/config"
	"github.com/projboard/projboard/internal/listing"
	"github.com/projboard/projboard/pkg/helpers"
)

// Seeds a demo account and a few listings for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@projboard.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var accountID string
	err = db.QueryRow(`
		INSERT INTO accounts (email, password_hash, name, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, "Demo User", "+55 11 99999-0000").Scan(&accountID)
	if err != nil {
		log.Fatalf("failed to seed account: %v", err)
	}
	fmt.Printf("seeded account: id=%s email=%s password=%s\n", accountID, email, password)

	demos := []struct {
		title, description, displayPrice string
		partySize                        int
	}{
		{"Site institucional", "Site de cinco páginas para uma clínica", "1.500,00", 1},
		{"App de delivery", "MVP de aplicativo de entregas", "8.900,00", 3},
		{"Landing page", "Página única com formulário de contato", "350,50", 1},
	}
	for _, d := range demos {
		var id string
		err = db.QueryRow(`
			INSERT INTO listings (title, description, display_price, price, party_size, owner_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, d.title, d.description, d.displayPrice, listing.ParsePrice(d.displayPrice), d.partySize, accountID).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed listing %q: %v", d.title, err)
		}
		fmt.Printf("seeded listing: id=%s title=%s\n", id, d.title)
	}
}
