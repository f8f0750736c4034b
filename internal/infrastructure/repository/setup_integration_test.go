package repository_test

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openTestDB connects to the integration database and (re)creates the
// transfer schema. Tests are skipped entirely when TEST_DATABASE_URL is not
// set.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}

	createSQL := `
    CREATE EXTENSION IF NOT EXISTS "uuid-ossp";
    CREATE TABLE IF NOT EXISTS orders (
      id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
      user_id UUID NOT NULL,
      source_group_link TEXT NOT NULL,
      target_group_link TEXT NOT NULL,
      quantity INT NOT NULL,
      current_count INT NOT NULL DEFAULT 0,
      status TEXT NOT NULL DEFAULT 'PENDING',
      started_at TIMESTAMPTZ,
      completed_at TIMESTAMPTZ,
      created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
      updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
      CHECK (status IN ('PENDING','PROCESSING','COMPLETED','FAILED','CANCELLED'))
    );
    CREATE TABLE IF NOT EXISTS transfer_jobs (
      id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
      order_id UUID NOT NULL REFERENCES orders(id),
      source_group_link TEXT NOT NULL,
      target_group_link TEXT NOT NULL,
      member_limit INT NOT NULL,
      status TEXT NOT NULL,
      total_count INT NOT NULL DEFAULT 0,
      completed_count INT NOT NULL DEFAULT 0,
      failed_count INT NOT NULL DEFAULT 0,
      skipped_count INT NOT NULL DEFAULT 0,
      attempts INT NOT NULL DEFAULT 0,
      max_attempts INT NOT NULL DEFAULT 3,
      error_message TEXT,
      heartbeat_at TIMESTAMPTZ,
      lease_expires_at TIMESTAMPTZ,
      started_at TIMESTAMPTZ,
      finished_at TIMESTAMPTZ,
      created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
      updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
      CHECK (status IN ('queued','running','succeeded','failed','cancelled'))
    );
    CREATE TABLE IF NOT EXISTS order_progress (
      id BIGSERIAL PRIMARY KEY,
      order_id UUID NOT NULL REFERENCES orders(id),
      count INT NOT NULL,
      message TEXT NOT NULL,
      created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS notifications (
      id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
      user_id UUID NOT NULL,
      title VARCHAR(255) NOT NULL,
      message TEXT NOT NULL,
      type TEXT NOT NULL,
      action_url TEXT,
      read BOOLEAN NOT NULL DEFAULT FALSE,
      created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    `
	if err := db.Exec(createSQL).Error; err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	for _, table := range []string{"notifications", "order_progress", "transfer_jobs", "orders"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to cleanup %s: %v", table, err)
		}
	}

	return db
}

// seedOrder inserts a PENDING order and returns its id.
func seedOrder(t *testing.T, db *gorm.DB, quantity int) string {
	t.Helper()

	var orderID string
	err := db.Raw(`
INSERT INTO orders (user_id, source_group_link, target_group_link, quantity)
VALUES (uuid_generate_v4(), 'https://t.me/sourcegroup', 'https://t.me/targetgroup', ?)
RETURNING id
`, quantity).Scan(&orderID).Error
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return orderID
}
