package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"securevault.org/internal/auth"
	"securevault.org/internal/ids"
	"securevault.org/internal/migrate"
)

// Default accounts created by the seed command. Hashes are computed at seed
// time so no digest literal lives in version control.
var seedAccounts = []struct {
	Email     string
	FirstName string
	LastName  string
	Role      auth.Role
}{
	{"admin@securevault.com", "Admin", "SecureVault", auth.RoleAdmin},
	{"officer@securevault.com", "John", "Doe", auth.RoleBankOfficer},
	{"user@securevault.com", "Jane", "Smith", auth.RoleUser},
}

const seedPassword = "SecureVault2025!"

func main() {
	log.SetFlags(0)
	var (
		dsn            = flag.String("dsn", os.Getenv("VAULT_PG_DSN"), "PostgreSQL DSN")
		migrationsPath = flag.String("migrations", "ops/migrations/sql", "Path to SQL migrations")
		seedsPath      = flag.String("seeds", "ops/migrations/seeds", "Path to SQL seeds")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or VAULT_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|seed|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	mgr := migrate.NewManager(db, *migrationsPath, *seedsPath)

	switch flag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		if err = mgr.Seed(ctx); err == nil {
			err = seedDefaultAccounts(ctx, db)
		}
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

func seedDefaultAccounts(ctx context.Context, db *sql.DB) error {
	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	for _, acc := range seedAccounts {
		res, err := db.ExecContext(ctx, `
			insert into users (id, email, password_hash, first_name, last_name, role, active)
			values ($1, $2, $3, $4, $5, $6, true)
			on conflict (email) do nothing
		`, ids.New(), acc.Email, hash, acc.FirstName, acc.LastName, string(acc.Role))
		if err != nil {
			return fmt.Errorf("seed account %s: %w", acc.Email, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Printf("seeded account %s (%s)", acc.Email, acc.Role)
		}
	}
	return nil
}
