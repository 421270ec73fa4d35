// cmd/addsuperuser/main.go
// Creates a superuser account, or promotes an existing user and resets their
// password.
//
// Usage:
//
//	go run ./cmd/addsuperuser -username admin -email admin@example.com -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/config"
	bundb "github.com/jjpaste/jjbin/db"
	"github.com/jjpaste/jjbin/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	email := flag.String("email", "", "email (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	if *username == "" || *email == "" || *password == "" {
		log.Fatal("-username, -email and -password are all required")
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal("hash password:", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	if err := bundb.CreateTables(context.Background(), db); err != nil {
		log.Fatal("create tables:", err)
	}

	user := &models.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		IsSuperuser:  true,
	}

	_, err = db.NewInsert().Model(user).
		On("CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, is_superuser = TRUE").
		Exec(context.Background())
	if err != nil {
		log.Fatal("insert user:", err)
	}

	fmt.Printf("superuser %q saved\n", *username)
}
