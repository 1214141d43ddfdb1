package wallets

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupWalletsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS wallets (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  balance INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, channel_id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestIncrementCreatesWalletOnFirstTouch(t *testing.T) {
	db := setupWalletsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	channelID := uuid.New()

	balance, err := repo.Increment(ctx, userID, channelID, 50)
	require.NoError(t, err)
	require.Equal(t, int64(50), balance)

	wallet, err := repo.Find(ctx, userID, channelID)
	require.NoError(t, err)
	require.NotNil(t, wallet)
	require.Equal(t, int64(50), wallet.Balance)
}

func TestIncrementAccumulates(t *testing.T) {
	db := setupWalletsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	channelID := uuid.New()

	var balance int64
	var err error
	for i := 0; i < 100; i++ {
		balance, err = repo.Increment(ctx, userID, channelID, 3)
		require.NoError(t, err)
	}
	require.Equal(t, int64(300), balance)
}

func TestIncrementIsScopedPerChannel(t *testing.T) {
	db := setupWalletsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	_, err := repo.Increment(ctx, userID, first, 10)
	require.NoError(t, err)
	_, err = repo.Increment(ctx, userID, second, 25)
	require.NoError(t, err)
	_, err = repo.Increment(ctx, userID, first, 5)
	require.NoError(t, err)

	w1, err := repo.Find(ctx, userID, first)
	require.NoError(t, err)
	require.Equal(t, int64(15), w1.Balance)

	w2, err := repo.Find(ctx, userID, second)
	require.NoError(t, err)
	require.Equal(t, int64(25), w2.Balance)

	rows, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestFindReturnsNilForUnknownWallet(t *testing.T) {
	db := setupWalletsTestDB(t)
	repo := NewRepository(db)

	wallet, err := repo.Find(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, wallet)
}

func TestServiceRejectsNonPositiveDelta(t *testing.T) {
	db := setupWalletsTestDB(t)
	svc := NewService(NewRepository(db))

	_, err := svc.Increment(context.Background(), db, uuid.New(), uuid.New(), 0)
	require.Error(t, err)

	_, err = svc.Increment(context.Background(), db, uuid.New(), uuid.New(), -5)
	require.Error(t, err)
}

func TestServiceBalanceDefaultsToZero(t *testing.T) {
	db := setupWalletsTestDB(t)
	svc := NewService(NewRepository(db))

	balance, err := svc.Balance(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}
