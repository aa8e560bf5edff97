package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kanon95/user-records/internal/domain"
	"github.com/kanon95/user-records/internal/repository"
)

func newTestSvc(t *testing.T) *UserSvc {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo := repository.NewUserRepo(gdb)
	require.NoError(t, repo.Migrate())
	return NewUserSvc(repo)
}

func TestCreateAssignsID(t *testing.T) {
	svc := newTestSvc(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, "Kim", "kim@test.com")
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "Kim", got.Name)
	require.Equal(t, "kim@test.com", got.Email)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newTestSvc(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Kim", "kim@test.com")
	require.NoError(t, err)

	// same email, different name: still a duplicate
	_, err = svc.Create(ctx, "Someone Else", "kim@test.com")
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUpdatePreservesID(t *testing.T) {
	svc := newTestSvc(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, "Kim", "kim@test.com")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, u.ID, "Lee", "lee@test.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, updated.ID)
	require.Equal(t, "Lee", updated.Name)
	require.Equal(t, "lee@test.com", updated.Email)
}

func TestUpdateMissingLeavesStoreUnmodified(t *testing.T) {
	svc := newTestSvc(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Kim", "kim@test.com")
	require.NoError(t, err)
	before, err := svc.List(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, 999, "Lee", "lee@test.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	after, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestDeleteMissing(t *testing.T) {
	svc := newTestSvc(t)
	require.ErrorIs(t, svc.Delete(context.Background(), 999), domain.ErrNotFound)
}

func TestGetByEmailAndName(t *testing.T) {
	svc := newTestSvc(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Kim", "kim@test.com")
	require.NoError(t, err)

	got, err := svc.GetByEmailAndName(ctx, "kim@test.com", "Kim")
	require.NoError(t, err)
	require.Equal(t, "Kim", got.Name)

	_, err = svc.GetByEmailAndName(ctx, "kim@test.com", "Lee")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
