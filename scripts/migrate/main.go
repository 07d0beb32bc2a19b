// Command migrate creates the database schema and seeds the default
// settings. It is idempotent and safe to rerun against a live database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/smp-yps/assignment-api/pkg/config"
	"github.com/smp-yps/assignment-api/pkg/database"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name     TEXT NOT NULL,
		role          TEXT NOT NULL,
		phone_number  TEXT,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		last_login    TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token      TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		revoked    BOOLEAN NOT NULL DEFAULT FALSE,
		revoked_at TIMESTAMPTZ,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS classes (
		id         TEXT PRIMARY KEY,
		grade      INTEGER NOT NULL,
		name       TEXT NOT NULL,
		teacher_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (grade, name)
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id            TEXT PRIMARY KEY,
		subject       TEXT NOT NULL,
		learning_goal TEXT NOT NULL,
		type          TEXT NOT NULL,
		week_number   INTEGER NOT NULL,
		year          INTEGER NOT NULL,
		status        TEXT NOT NULL,
		assigned_date TIMESTAMPTZ NOT NULL,
		teacher_id    TEXT NOT NULL REFERENCES users(id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS class_assignments (
		class_id      TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		assigned_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (class_id, assignment_id)
	)`,
	`CREATE TABLE IF NOT EXISTS assignment_statuses (
		assignment_id  TEXT PRIMARY KEY REFERENCES assignments(id) ON DELETE CASCADE,
		is_graded      BOOLEAN NOT NULL DEFAULT FALSE,
		graded_at      TIMESTAMPTZ,
		grade_input_by TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key         TEXT PRIMARY KEY,
		value       TEXT NOT NULL,
		description TEXT,
		updated_by  TEXT,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id         TEXT PRIMARY KEY,
		user_id    TEXT,
		action     TEXT NOT NULL,
		table_name TEXT,
		record_id  TEXT,
		old_value  TEXT,
		new_value  TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS reminder_logs (
		id              TEXT PRIMARY KEY,
		assignment_id   TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		teacher_id      TEXT NOT NULL REFERENCES users(id),
		sent_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		message_sid     TEXT,
		message_content TEXT,
		status          TEXT NOT NULL DEFAULT 'sent',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (assignment_id, teacher_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_teacher_week
		ON assignments (teacher_id, week_number, year)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at
		ON audit_logs (created_at DESC)`,
}

func main() {
	var (
		adminEmail    string
		adminPassword string
		adminName     string
	)

	flag.StringVar(&adminEmail, "admin-email", "", "Seed an admin account with this email")
	flag.StringVar(&adminPassword, "admin-password", "", "Password for the seeded admin account")
	flag.StringVar(&adminName, "admin-name", "Administrator", "Full name for the seeded admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("statement %d failed: %v", i+1, err)
		}
	}

	seed := `INSERT INTO settings (key, value, description, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO NOTHING`
	if _, err := db.ExecContext(ctx, seed,
		"max_assignments_per_class_per_week", "2",
		"Batas maksimal tugas per kelas per minggu"); err != nil {
		log.Fatalf("failed to seed settings: %v", err)
	}

	if adminEmail != "" {
		if adminPassword == "" {
			log.Fatal("-admin-password is required when -admin-email is set")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		insert := `INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'ADMIN', TRUE, NOW(), NOW())
			ON CONFLICT (email) DO NOTHING`
		if _, err := db.ExecContext(ctx, insert, uuid.NewString(), adminEmail, string(hash), adminName); err != nil {
			log.Fatalf("failed to seed admin account: %v", err)
		}
		fmt.Printf("admin account ready: %s\n", adminEmail)
	}

	fmt.Println("schema up to date")
}
