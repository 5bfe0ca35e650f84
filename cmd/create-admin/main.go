package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ednc-edu/course-roster-api/pkg/config"
	"github.com/ednc-edu/course-roster-api/pkg/database"
)

// Registration never grants the admin flag, so admin accounts are
// created (or promoted) with this tool.
func main() {
	var name, email, password string
	flag.StringVar(&name, "name", "", "admin display name")
	flag.StringVar(&email, "email", "", "admin email")
	flag.StringVar(&password, "password", "", "admin password")
	flag.Parse()

	if name == "" || email == "" || password == "" {
		log.Fatal("usage: create-admin -name NAME -email EMAIL -password PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var exists bool
	if err := db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM instructors WHERE email = $1)`, email); err != nil {
		log.Fatalf("failed to query instructors: %v", err)
	}

	if exists {
		if _, err := db.ExecContext(ctx, `UPDATE instructors SET is_admin = TRUE WHERE email = $1`, email); err != nil {
			log.Fatalf("failed to promote instructor: %v", err)
		}
		fmt.Println("existing instructor promoted to admin:", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO instructors (name, email, password_hash, is_admin) VALUES ($1, $2, $3, TRUE)`,
		name, email, string(hash)); err != nil {
		log.Fatalf("failed to insert admin: %v", err)
	}

	fmt.Println("admin account created:", email)
}
