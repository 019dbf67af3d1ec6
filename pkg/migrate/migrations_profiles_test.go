package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gloova-ai/gloova-backend/pkg/migrate"
)

func TestProfilesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_profiles.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no profiles migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS profiles",
		"CHECK (chat_credits >= 0)",
		"CHECK (diagnosis_credits >= 0)",
		"CHECK (scan_credits >= 0)",
		"CHECK (points >= 0)",
		"idx_profiles_referral_code",
		"DROP TABLE IF EXISTS profiles",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReferralBonusMigrationHasIdempotencyIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_referral_bonuses.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no referral bonuses migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}

	if !strings.Contains(string(data), "CREATE UNIQUE INDEX IF NOT EXISTS idx_referral_bonuses_referred") {
		t.Error("referral bonuses table must be unique per referred profile")
	}
}

func TestValidateShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}
