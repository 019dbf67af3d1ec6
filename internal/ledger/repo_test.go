package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  name TEXT,
  whatsapp TEXT,
  role TEXT NOT NULL DEFAULT 'member',
  subscription_tier TEXT NOT NULL DEFAULT 'free',
  chat_credits INTEGER NOT NULL DEFAULT 0,
  diagnosis_credits INTEGER NOT NULL DEFAULT 0,
  scan_credits INTEGER NOT NULL DEFAULT 0,
  points INTEGER NOT NULL DEFAULT 0,
  badges TEXT,
  referral_code TEXT NOT NULL UNIQUE,
  referred_by TEXT,
  memory_key TEXT NOT NULL DEFAULT '',
  conversation_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedLedgerProfile(t *testing.T, db *gorm.DB, chatCredits int) models.Profile {
	t.Helper()
	profile := models.Profile{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@gloova.com.br", uuid.NewString()),
		ReferralCode: uuid.NewString(),
		ChatCredits:  chatCredits,
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func TestRepositoryDeductCredit(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profile := seedLedgerProfile(t, db, 5)

	balance, clamped, found, err := repo.DeductCredit(ctx, profile.ID, enums.CreditChat, 2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, clamped)
	assert.Equal(t, 3, balance)
}

func TestRepositoryDeductCreditClampsShortBalance(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profile := seedLedgerProfile(t, db, 1)

	balance, clamped, found, err := repo.DeductCredit(ctx, profile.ID, enums.CreditChat, 4)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, clamped)
	assert.Equal(t, 0, balance)
}

func TestRepositoryDeductCreditAbsentProfile(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	balance, clamped, found, err := repo.DeductCredit(ctx, uuid.New(), enums.CreditChat, 1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, clamped)
	assert.Equal(t, 0, balance)
}

func TestDeductAbsentProfileIsSilentNoop(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	svc, _ := newTestService(t, repo)

	balance, err := svc.Deduct(context.Background(), uuid.New(), enums.CreditChat, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestRepositoryGrantCredit(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	profile := seedLedgerProfile(t, db, 0)

	balance, err := repo.GrantCredit(ctx, profile.ID, enums.CreditChat, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}
