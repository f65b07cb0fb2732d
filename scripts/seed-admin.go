package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/commonsroom/commonsroom/internal/model"
	"github.com/commonsroom/commonsroom/internal/repository"
)

type output struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// seed-admin grants the admin role to an identity-provider user.
// The user ID must match the ID the identity provider reports for the
// account; the portal never mints identities of its own.
func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		userID      = flag.String("user-id", "", "Identity provider user ID to promote")
		email       = flag.String("email", "", "User email")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *userID == "" || *email == "" {
		fmt.Fprintln(os.Stderr, "-user-id and -email are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	profile := &model.Profile{
		ID:        *userID,
		Email:     *email,
		Role:      model.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.UpsertProfile(ctx, profile); err != nil {
		fmt.Fprintln(os.Stderr, "upsert profile:", err)
		os.Exit(1)
	}

	out := output{
		UserID: profile.ID,
		Email:  profile.Email,
		Role:   profile.Role,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("%s is now an admin\n", out.Email)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
