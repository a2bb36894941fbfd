package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coursebay/coursebay-backend/pkg/migrate"
)

func TestOrdersMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders_and_order_items.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE orders",
		"payment_reference TEXT NOT NULL UNIQUE",
		"CREATE TABLE order_items",
		"quantity INT NOT NULL CHECK (quantity > 0)",
		"CREATE INDEX idx_order_items_order_id",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
