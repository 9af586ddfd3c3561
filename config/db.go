package config

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"warehouse-app/auth"
	"warehouse-app/models"
)

var DB *sql.DB

// TimeFormat is how instants are stored in the database: ISO-8601 text,
// which sorts chronologically as plain strings.
const TimeFormat = time.RFC3339Nano

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func ParseTime(value string) (time.Time, error) {
	return time.Parse(TimeFormat, value)
}

// InitDB opens the SQLite database, creates the schema and seeds the
// administrator account.
func InitDB(path string) error {
	var err error
	// Foreign-key enforcement is per connection, so the pragma rides
	// the DSN where every pooled connection picks it up.
	DB, err = sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := createTables(); err != nil {
		return err
	}
	return seedAdmin()
}

func createTables() error {
	// One transaction for the whole schema.
	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			join_code TEXT UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS memberships (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('owner','manager','viewer')),
			created_at TEXT NOT NULL,
			UNIQUE(user_id, org_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS org_products (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			name TEXT NOT NULL,
			sku TEXT NOT NULL,
			unit TEXT NOT NULL DEFAULT 'шт',
			price REAL NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0,
			purchase_price REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS org_receipts (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			cost REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES org_products(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS org_shipments (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS org_shipment_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			shipment_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price REAL NOT NULL,
			amount REAL NOT NULL,
			FOREIGN KEY (shipment_id) REFERENCES org_shipments(id) ON DELETE CASCADE,
			FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES org_products(id) ON DELETE CASCADE
		)`,
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("create table: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}

// seedAdmin makes sure an administrator exists: the first organization
// (created and stocked if there is none) plus an admin/admin123 owner.
func seedAdmin() error {
	var adminID string
	err := DB.QueryRow("SELECT id FROM users WHERE name = 'admin'").Scan(&adminID)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("look up admin user: %w", err)
	}

	var orgID string
	err = DB.QueryRow("SELECT id FROM organizations ORDER BY created_at ASC LIMIT 1").Scan(&orgID)
	if err == sql.ErrNoRows {
		orgID = models.NewID("org")
		joinCode, codeErr := generateJoinCode()
		if codeErr != nil {
			return codeErr
		}
		_, err = DB.Exec(
			"INSERT INTO organizations (id, name, join_code, created_at) VALUES (?, ?, ?, ?)",
			orgID, "Основная организация", joinCode, FormatTime(time.Now()),
		)
		if err != nil {
			return fmt.Errorf("create default organization: %w", err)
		}
		if err := seedOrg(orgID); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("look up organization: %w", err)
	}

	userID := models.NewID("u")
	_, err = DB.Exec(
		"INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		userID, "admin", "admin@local", auth.HashPassword("admin123"), FormatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	_, err = DB.Exec(
		"INSERT INTO memberships (id, user_id, org_id, role, created_at) VALUES (?, ?, ?, 'owner', ?)",
		models.NewID("m"), userID, orgID, FormatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("create admin membership: %w", err)
	}
	return nil
}

func seedOrg(orgID string) error {
	p1 := models.NewID("p")
	p2 := models.NewID("p")
	p3 := models.NewID("p")

	products := []struct {
		id, name, sku string
		price         float64
		stock         int
		purchase      float64
	}{
		{p1, "Роликовый массажер", "00044", 65000, 6, 55000},
		{p2, "Сыворотка SkinLab", "00047", 2000, 35, 1200},
		{p3, "Игла 27g", "00030", 600, 190, 300},
	}
	for _, p := range products {
		_, err := DB.Exec(
			"INSERT INTO org_products (id, org_id, name, sku, unit, price, stock, purchase_price, created_at) VALUES (?, ?, ?, ?, 'шт', ?, ?, ?, ?)",
			p.id, orgID, p.name, p.sku, p.price, p.stock, p.purchase, FormatTime(time.Now()),
		)
		if err != nil {
			return fmt.Errorf("seed product: %w", err)
		}
	}

	receipts := []struct {
		productID string
		quantity  int
		cost      float64
	}{
		{p2, 20, 1500},
		{p1, 10, 55000},
	}
	for _, r := range receipts {
		_, err := DB.Exec(
			"INSERT INTO org_receipts (id, org_id, product_id, quantity, cost, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			models.NewID("r"), orgID, r.productID, r.quantity, r.cost, FormatTime(time.Now()),
		)
		if err != nil {
			return fmt.Errorf("seed receipt: %w", err)
		}
	}
	return nil
}

// generateJoinCode picks a short uppercase hex code not yet taken by
// any organization.
func generateJoinCode() (string, error) {
	for {
		raw := make([]byte, 3)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		code := strings.ToUpper(hex.EncodeToString(raw))

		var existing string
		err := DB.QueryRow("SELECT id FROM organizations WHERE join_code = ?", code).Scan(&existing)
		if err == sql.ErrNoRows {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check join code: %w", err)
		}
	}
}
