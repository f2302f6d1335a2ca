package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/migrate"
)

func TestBaseSchemaMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_base_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no base schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE SEQUENCE pedidos_numero_seq",
		"CREATE UNIQUE INDEX idx_carrinhos_cliente_active",
		"WHERE status = 'active'",
		"CHECK (quantidade > 0)",
		"CREATE INDEX idx_outbox_unpublished ON outbox_events (created_at) WHERE published_at IS NULL",
		"DROP SEQUENCE IF EXISTS pedidos_numero_seq",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}
