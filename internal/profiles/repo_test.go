package profiles

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
)

func setupProfilesTestDB(t *testing.T) *gorm.DB {
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

func seedListProfile(t *testing.T, db *gorm.DB, email string, createdAt time.Time) models.Profile {
	t.Helper()
	profile := models.Profile{
		ID:           uuid.New(),
		Email:        email,
		ReferralCode: uuid.NewString(),
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func TestRepositoryListPaginatesNewestFirst(t *testing.T) {
	db := setupProfilesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedListProfile(t, db, fmt.Sprintf("user%d@gloova.com.br", i), base.Add(time.Duration(i)*time.Hour))
	}

	page, cursor, err := repo.List(ctx, listProfilesParams{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.NotNil(t, cursor)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	rest, cursor, err := repo.List(ctx, listProfilesParams{Limit: 3, Cursor: cursor})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Nil(t, cursor)
}

func TestRepositoryListFiltersByEmail(t *testing.T) {
	db := setupProfilesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	match := seedListProfile(t, db, "ana@gloova.com.br", base)
	seedListProfile(t, db, "bruno@example.com", base.Add(time.Hour))

	page, cursor, err := repo.List(ctx, listProfilesParams{Search: "ana@"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, match.ID, page[0].ID)
	assert.Nil(t, cursor)
}

func setupTranslatedProfilesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	ddl := []string{`
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
);`, `
CREATE TABLE IF NOT EXISTS referral_bonuses (
  id TEXT PRIMARY KEY,
  referred_profile_id TEXT NOT NULL UNIQUE,
  referrer_profile_id TEXT NOT NULL,
  points INTEGER NOT NULL,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestCreateDuplicateEmailIsConflictOnSQLite(t *testing.T) {
	db := setupTranslatedProfilesTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, SignupInput{Email: "ana@gloova.com.br", PasswordHash: "hash"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, SignupInput{Email: "ana@gloova.com.br", PasswordHash: "hash"})
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeConflict, typed.Code())
}

func TestRecordReferralBonusIdempotentOnSQLite(t *testing.T) {
	db := setupTranslatedProfilesTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	referred := uuid.New()
	referrer := uuid.New()

	first, err := svc.RecordReferralBonus(ctx, referred, referrer, 500)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := svc.RecordReferralBonus(ctx, referred, referrer, 500)
	require.NoError(t, err)
	assert.False(t, second)
}
